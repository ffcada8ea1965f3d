package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
)

// extractImage runs OCR over a PNG or JPEG. An empty payload yields no text
// without calling the engine.
func (e *Extractor) extractImage(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("image: decode header: %w", err)
	}
	if e.ocr == nil {
		return "", errors.New("image: no OCR engine configured")
	}
	text, err := e.ocr.Recognize(ctx, data, e.ocrLang)
	if err != nil {
		return "", fmt.Errorf("image: ocr: %w", err)
	}
	return text, nil
}
