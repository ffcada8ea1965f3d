package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// PowerPoint 97-2003 record types.
const (
	pptRecordHeaderSize  = 8
	pptContainerVersion  = 0x000F
	recSlide             = 0x03EE
	recSlidePersistAtom  = 0x03F3
	recSlideListWithText = 0x0FF0
	recTextCharsAtom     = 0x0FA0
	recTextBytesAtom     = 0x0FA8
	streamPowerPoint     = "PowerPoint Document"
)

func extractPPT(ctx context.Context, data []byte) (string, error) {
	streams, err := readCFBStreams(data, streamPowerPoint)
	if err != nil {
		return "", fmt.Errorf("ppt: %w", err)
	}
	stream := streams[streamPowerPoint]
	if stream == nil {
		return "", errors.New("ppt: PowerPoint Document stream missing")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return pptStreamText(stream)
}

func pptStreamText(stream []byte) (string, error) {
	w := &pptWalker{}
	if err := w.walk(stream, scopeOther); err != nil {
		return "", fmt.Errorf("ppt: %w", err)
	}
	slides := w.listSlides
	if len(slides) == 0 {
		slides = w.drawnSlides
	}
	text := joinSlides(slides)
	if text == "" {
		return "", fmt.Errorf("ppt: %w", errNoSlideText)
	}
	return text, nil
}

// pptWalker collects slide text two ways: from the slide list's text atoms,
// grouped by SlidePersistAtom, and from text atoms nested in Slide containers.
type pptWalker struct {
	listSlides  [][]string
	drawnSlides [][]string
}

type pptScope int

const (
	scopeOther pptScope = iota
	scopeSlideList
	scopeSlide
)

func (w *pptWalker) walk(b []byte, scope pptScope) error {
	for off := 0; off+pptRecordHeaderSize <= len(b); {
		verInst := le16(b, off)
		recType := le16(b, off+2)
		recLen := int(le32(b, off+4))
		body := off + pptRecordHeaderSize
		if recLen < 0 || body+recLen > len(b) {
			return fmt.Errorf("record 0x%04X at offset %d overruns its parent", recType, off)
		}
		content := b[body : body+recLen]

		if verInst&0x000F == pptContainerVersion {
			child := scope
			switch recType {
			case recSlideListWithText:
				// instance 0 holds slides; 1 and 2 hold masters and notes
				if verInst>>4 == 0 {
					child = scopeSlideList
				} else {
					child = scopeOther
				}
			case recSlide:
				w.drawnSlides = append(w.drawnSlides, nil)
				child = scopeSlide
			}
			if err := w.walk(content, child); err != nil {
				return err
			}
		} else {
			switch recType {
			case recSlidePersistAtom:
				if scope == scopeSlideList {
					w.listSlides = append(w.listSlides, nil)
				}
			case recTextCharsAtom:
				w.add(scope, decodeUTF16LE(content))
			case recTextBytesAtom:
				decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
				if err != nil {
					return fmt.Errorf("decode text bytes: %w", err)
				}
				w.add(scope, string(decoded))
			}
		}
		off = body + recLen
	}
	return nil
}

func (w *pptWalker) add(scope pptScope, text string) {
	text = strings.Join(strings.FieldsFunc(text, func(r rune) bool {
		return r == '\r' || r == '\v' || r == '\n'
	}), " ")
	switch scope {
	case scopeSlideList:
		if len(w.listSlides) == 0 {
			w.listSlides = append(w.listSlides, nil)
		}
		last := len(w.listSlides) - 1
		w.listSlides[last] = append(w.listSlides[last], text)
	case scopeSlide:
		last := len(w.drawnSlides) - 1
		w.drawnSlides[last] = append(w.drawnSlides[last], text)
	}
}

func decodeUTF16LE(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = le16(b, i*2)
	}
	return string(utf16.Decode(units))
}
