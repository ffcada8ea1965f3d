package extract

import "errors"

var (
	// ErrUnsupportedFormat is returned when the declared media type has no extractor.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrExtractionFailed is returned when an extractor cannot parse the bytes.
	ErrExtractionFailed = errors.New("extraction failed")
	// ErrEmptyDocument is returned when extraction succeeds but yields no usable text.
	ErrEmptyDocument = errors.New("empty document")
)
