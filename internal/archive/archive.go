// Package archive exposes the minimal read-side view of a compressed archive
// that the installers need: ordered entries, their kind, and their bytes.
package archive

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// Reader enumerates the entries of an opened archive in storage order.
type Reader interface {
	Entries() []Entry
}

// Entry is one file or directory record inside an archive. Name always uses
// forward slashes, regardless of host OS.
type Entry interface {
	Name() string
	IsDir() bool
	Open() (io.ReadCloser, error)
}

// Opener turns raw archive bytes into a Reader.
type Opener func(data []byte) (Reader, error)

type zipReader struct {
	entries []Entry
}

type zipEntry struct {
	f *zip.File
}

// OpenZip parses data as a ZIP container.
func OpenZip(data []byte) (Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, zipEntry{f: f})
	}
	return &zipReader{entries: entries}, nil
}

func (r *zipReader) Entries() []Entry {
	return r.entries
}

func (e zipEntry) Name() string {
	return e.f.Name
}

// IsDir reports directory entries, either by mode bits or by the trailing
// slash most zip writers use for folder markers.
func (e zipEntry) IsDir() bool {
	if e.f.FileInfo().IsDir() {
		return true
	}
	n := e.f.Name
	return len(n) > 0 && (n[len(n)-1] == '/' || n[len(n)-1] == '\\')
}

func (e zipEntry) Open() (io.ReadCloser, error) {
	return e.f.Open()
}
