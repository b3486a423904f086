package archive

import (
	"bytes"
	"io"
)

// MemoryEntry is an uncompressed in-memory entry, used to drive the
// installers without real zip bytes.
type MemoryEntry struct {
	Path    string
	Dir     bool
	Content []byte
	OpenErr error
}

type MemoryReader []MemoryEntry

func (m MemoryReader) Entries() []Entry {
	out := make([]Entry, 0, len(m))
	for i := range m {
		out = append(out, m[i])
	}
	return out
}

func (e MemoryEntry) Name() string { return e.Path }

func (e MemoryEntry) IsDir() bool { return e.Dir }

func (e MemoryEntry) Open() (io.ReadCloser, error) {
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}
	return io.NopCloser(bytes.NewReader(e.Content)), nil
}
