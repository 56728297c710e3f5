package archive

import "errors"

var (
	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrUnsafePath is returned when a tar entry would be written outside the extraction directory
	ErrUnsafePath = errors.New("archive entry escapes extraction directory")

	// ErrUnsupportedEntry is returned for tar entries that are neither files nor directories
	ErrUnsupportedEntry = errors.New("unsupported archive entry type")
)
