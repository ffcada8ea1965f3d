package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

const (
	nsWordML    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsMarkupCmp = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

// extractWord handles both OOXML (.docx) and legacy binary (.doc) documents,
// picking the reader from the container signature.
func extractWord(ctx context.Context, data []byte) (string, error) {
	switch {
	case len(data) == 0:
		return "", errors.New("word: empty payload")
	case isZip(data):
		return extractDOCX(data)
	case isCFB(data):
		return extractDOC(ctx, data)
	default:
		return "", errors.New("word: unrecognized container")
	}
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: open: %w", err)
	}
	text, err := docxPlainText(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("docx: parse body: %w", err)
	}
	return text, nil
}

// docxPlainText keeps the visible run text of a document.xml body. Paragraphs end
// with a newline, tabs and breaks are kept, and deleted or field-code text is dropped.
func docxPlainText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var (
		buf           strings.Builder
		inText        bool
		fallbackDepth int
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsMarkupCmp && t.Name.Local == "Fallback" {
				fallbackDepth++
			}
			if fallbackDepth > 0 || t.Name.Space != nsWordML {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space == nsMarkupCmp && t.Name.Local == "Fallback" {
				fallbackDepth--
				continue
			}
			if fallbackDepth > 0 || t.Name.Space != nsWordML {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText && fallbackDepth == 0 {
				buf.Write(t)
			}
		}
	}
	return buf.String(), nil
}
