package unzip

import "errors"

// Failure categories. Each one maps to a distinct exit code in the CLI
// shell; the library only reports what went wrong.
var (
	// ErrNotZipFile reports a source path that does not carry the .zip
	// suffix, or an empty path.
	ErrNotZipFile = errors.New("not a zip file")

	// ErrArchiveMissing reports a source path that does not reference an
	// existing file.
	ErrArchiveMissing = errors.New("zip file not found")

	// ErrBadArchive reports a file that exists but is not a structurally
	// valid ZIP archive.
	ErrBadArchive = errors.New("invalid zip file")
)
