package installer

import "github.com/NattKh/Expedition33ModManager/internal/errs"

// Error kinds re-exported from errs, so installer callers need one import.
type (
	FetchError         = errs.FetchError
	HTTPStatusError    = errs.HTTPStatusError
	ArchiveFormatError = errs.ArchiveFormatError
	IOError            = errs.IOError
)

var (
	// ErrFetch is returned when the loader download could not be completed.
	ErrFetch = errs.ErrFetch

	// ErrHTTPStatus is returned when the server answered with a non-2xx status.
	ErrHTTPStatus = errs.ErrHTTPStatus

	// ErrArchiveFormat is returned when the bytes are not a readable zip.
	ErrArchiveFormat = errs.ErrArchiveFormat

	// ErrIO is returned when a filesystem read, create or write failed.
	ErrIO = errs.ErrIO
)
