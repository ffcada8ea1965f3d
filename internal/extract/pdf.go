package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF reads every page in order. Text fragments within a page are joined
// with single spaces and pages are separated by a blank line.
func extractPDF(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("pdf: empty payload")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: open: %w", err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		fragments, err := pageFragments(page)
		if err != nil {
			return "", fmt.Errorf("pdf: page %d: %w", i, err)
		}
		if joined := joinFragments(fragments); joined != "" {
			pages = append(pages, joined)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageFragments returns the decoded operand of every text-showing operator on
// the page, in content-stream order. Each string element of a TJ array is its
// own fragment.
func pageFragments(page pdf.Page) (fragments []string, err error) {
	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Null {
		return nil, nil
	}

	defer func() {
		if r := recover(); r != nil {
			fragments, err = nil, fmt.Errorf("content stream: %v", r)
		}
	}()

	encoders := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		encoders[name] = page.Font(name).Encoder()
	}

	var enc pdf.TextEncoding
	show := func(v pdf.Value) {
		if v.Kind() != pdf.String {
			return
		}
		raw := v.RawString()
		if enc != nil {
			raw = enc.Decode(raw)
		}
		fragments = append(fragments, raw)
	}

	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "Tf":
			if len(args) == 2 {
				enc = encoders[args[0].Name()]
			}
		case "Tj", "'":
			if len(args) == 1 {
				show(args[0])
			}
		case `"`:
			if len(args) == 3 {
				show(args[2])
			}
		case "TJ":
			if len(args) == 1 {
				for i := 0; i < args[0].Len(); i++ {
					show(args[0].Index(i))
				}
			}
		}
	})
	return fragments, nil
}

// joinFragments collapses whitespace inside each fragment and joins the
// non-empty ones with single spaces.
func joinFragments(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.Join(strings.Fields(f), " "); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
