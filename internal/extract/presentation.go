package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const nsDrawingML = "http://schemas.openxmlformats.org/drawingml/2006/main"

var slideEntryPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// errNoSlideText reports a deck whose slides carry no text at all. A deck like
// that is treated as unreadable rather than empty.
var errNoSlideText = errors.New("no text on any slide")

// extractPresentation handles both OOXML (.pptx) and legacy binary (.ppt) decks.
func extractPresentation(ctx context.Context, data []byte) (string, error) {
	switch {
	case len(data) == 0:
		return "", errors.New("presentation: empty payload")
	case isZip(data):
		return extractPPTX(ctx, data)
	case isCFB(data):
		return extractPPT(ctx, data)
	default:
		return "", errors.New("presentation: unrecognized container")
	}
}

type slideEntry struct {
	index int
	file  *zip.File
}

// extractPPTX reads slides in numeric order (slide2 before slide10). Text runs
// within a slide are joined with spaces and slides are separated by a blank line.
func extractPPTX(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pptx: open: %w", err)
	}

	var entries []slideEntry
	for _, f := range zr.File {
		m := slideEntryPattern.FindStringSubmatch(strings.ReplaceAll(f.Name, "\\", "/"))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, slideEntry{index: idx, file: f})
	}
	if len(entries) == 0 {
		return "", errors.New("pptx: no slides found")
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})

	slides := make([][]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		runs, err := readSlideRuns(entry.file)
		if err != nil {
			return "", fmt.Errorf("pptx: %s: %w", entry.file.Name, err)
		}
		slides = append(slides, runs)
	}
	text := joinSlides(slides)
	if text == "" {
		return "", fmt.Errorf("pptx: %w", errNoSlideText)
	}
	return text, nil
}

func readSlideRuns(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var (
		runs   []string
		inText bool
		run    strings.Builder
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == nsDrawingML && t.Name.Local == "t" {
				inText = true
				run.Reset()
			}
		case xml.EndElement:
			if t.Name.Space == nsDrawingML && t.Name.Local == "t" {
				inText = false
				runs = append(runs, run.String())
			}
		case xml.CharData:
			if inText {
				run.Write(t)
			}
		}
	}
	return runs, nil
}

// joinSlides joins the non-blank runs of each slide with single spaces and
// separates non-empty slides with a blank line.
func joinSlides(slides [][]string) string {
	out := make([]string, 0, len(slides))
	for _, runs := range slides {
		parts := make([]string, 0, len(runs))
		for _, r := range runs {
			if r = strings.TrimSpace(r); r != "" {
				parts = append(parts, r)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	return strings.Join(out, "\n\n")
}
