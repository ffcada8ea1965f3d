// Package extracttest builds small in-memory documents for pipeline tests.
package extracttest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// PDF writes a minimal single-font PDF with one content stream per page. Each
// line of a page becomes its own text object.
func PDF(t testing.TB, pages ...[]string) []byte {
	t.Helper()

	streams := make([]string, 0, len(pages))
	for _, lines := range pages {
		var content strings.Builder
		y := 720
		for _, line := range lines {
			fmt.Fprintf(&content, "BT /F1 12 Tf 72 %d Td (%s) Tj ET\n", y, line)
			y -= 20
		}
		streams = append(streams, content.String())
	}
	return PDFContent(t, streams...)
}

// PDFContent writes a PDF whose pages carry the given raw content streams. The
// font resource /F1 is Helvetica with WinAnsiEncoding.
func PDFContent(t testing.TB, streams ...string) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, 0, len(streams))
	for _, content := range streams {
		pageNum := len(objects) + 1
		contentNum := pageNum + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", contentNum),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// Zip packs entries in the given order, or sorted by name when order is empty.
func Zip(t testing.TB, entries map[string]string, order ...string) []byte {
	t.Helper()
	if len(order) == 0 {
		for name := range entries {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// EmptyRelationships is an OPC relationships part with no entries.
const EmptyRelationships = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// DOCX wraps body (WordprocessingML paragraphs) in a minimal package.
func DOCX(t testing.TB, body string) []byte {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"><w:body>` +
		body + `</w:body></w:document>`
	return Zip(t, map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"_rels/.rels":                  EmptyRelationships,
		"word/document.xml":            document,
		"word/_rels/document.xml.rels": EmptyRelationships,
	})
}

// Paragraphs renders each line as a single-run Word paragraph.
func Paragraphs(lines ...string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + line + `</w:t></w:r></w:p>`)
	}
	return sb.String()
}

// SlideXML renders one slide holding the given text runs.
func SlideXML(runs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"`)
	sb.WriteString(` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`)
	sb.WriteString(`<p:cSld><p:spTree><p:sp><p:txBody><a:p>`)
	for _, r := range runs {
		sb.WriteString(`<a:r><a:t>` + r + `</a:t></a:r>`)
	}
	sb.WriteString(`</a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return sb.String()
}

// PNG encodes a tiny image with one dark pixel.
func PNG(t testing.TB) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
