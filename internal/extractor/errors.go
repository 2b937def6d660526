package extractor

import "errors"

var (
	// ErrUnsupportedFormat is returned when the declared filename is not a PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrExtraction covers unreadable, malformed or empty documents.
	ErrExtraction = errors.New("text extraction failed")
)
