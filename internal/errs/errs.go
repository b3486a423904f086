// Package errs holds the error kinds shared by every caller-facing operation:
// the installers, the mod lister and the directory scanner.
package errs

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrFetch matches a *FetchError: the loader download could not be completed.
	ErrFetch = errors.New("fetch failed")

	// ErrHTTPStatus matches a *HTTPStatusError: the server answered with a non-2xx status.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrArchiveFormat matches an *ArchiveFormatError: the bytes are not a readable zip.
	ErrArchiveFormat = errors.New("invalid archive")

	// ErrIO matches an *IOError: a filesystem read, create or write failed.
	ErrIO = errors.New("filesystem error")
)

type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("download %s: HTTP %s", e.URL, e.Status)
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// ArchiveFormatError is returned when the source cannot be parsed as a zip, or
// when an entry's compressed stream turns out to be corrupt.
type ArchiveFormatError struct {
	Source string
	Err    error
}

func (e *ArchiveFormatError) Error() string {
	return fmt.Sprintf("read archive %s: %v", e.Source, e.Err)
}

func (e *ArchiveFormatError) Unwrap() error { return e.Err }

func (e *ArchiveFormatError) Is(target error) bool { return target == ErrArchiveFormat }

// IOError carries the path that failed and the operation attempted on it.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error names the path once, even when the cause is an *fs.PathError for the
// same path.
func (e *IOError) Error() string {
	cause := e.Err
	var pe *fs.PathError
	if errors.As(cause, &pe) && pe.Path == e.Path {
		cause = pe.Err
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, cause)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
