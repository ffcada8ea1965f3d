package extract

import (
	"context"
	"fmt"
	"strings"
)

// DefaultOCRLanguage is the recognition language used when none is configured.
const DefaultOCRLanguage = "eng"

// Document is an uploaded file as received at the boundary.
type Document struct {
	Data      []byte
	MediaType string
	Size      int64
	FileName  string
}

// OCREngine recognizes text in a raster image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte, lang string) (string, error)
}

type extractFunc func(ctx context.Context, data []byte) (string, error)

// Extractor turns a Document into plain text using the strategy its media type selects.
type Extractor struct {
	ocr        OCREngine
	ocrLang    string
	strategies map[Format]extractFunc
}

type Option func(*Extractor)

// WithOCR sets the engine used for image documents.
func WithOCR(engine OCREngine, lang string) Option {
	return func(e *Extractor) {
		e.ocr = engine
		if strings.TrimSpace(lang) != "" {
			e.ocrLang = strings.TrimSpace(lang)
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{ocrLang: DefaultOCRLanguage}
	for _, opt := range opts {
		opt(e)
	}
	e.strategies = map[Format]extractFunc{
		FormatPDF:          extractPDF,
		FormatWordDoc:      extractWord,
		FormatPresentation: extractPresentation,
		FormatImage:        e.extractImage,
	}
	return e
}

// Extract returns the trimmed plain text of doc. Errors wrap ErrUnsupportedFormat,
// ErrExtractionFailed or ErrEmptyDocument; context cancellation is returned as is.
func (e *Extractor) Extract(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format := Sniff(doc.MediaType)
	if format == FormatUnsupported {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, NormalizeMediaType(doc.MediaType))
	}
	run, ok := e.strategies[format]
	if !ok {
		return "", fmt.Errorf("%w: no extractor registered for %s", ErrUnsupportedFormat, format)
	}

	text, err := safeRun(ctx, run, doc.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %w", ErrExtractionFailed, format, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s produced no text", ErrEmptyDocument, format)
	}
	return text, nil
}

// safeRun converts a parser panic into an error; the binary format readers
// panic on some malformed inputs.
func safeRun(ctx context.Context, run extractFunc, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed document: %v", r)
		}
	}()
	return run(ctx, data)
}
