package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniff(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Format
	}{
		{MimePDF, FormatPDF},
		{MimeDOC, FormatWordDoc},
		{MimeDOCX, FormatWordDoc},
		{MimePPT, FormatPresentation},
		{MimePPTX, FormatPresentation},
		{MimeJPEG, FormatImage},
		{MimeJPEGAlt, FormatImage},
		{MimePNG, FormatImage},
		{"Application/PDF; charset=binary", FormatPDF},
		{"  image/png  ", FormatImage},
		{"", FormatUnsupported},
		{"text/plain", FormatUnsupported},
		{"application/zip", FormatUnsupported},
		{"application/octet-stream", FormatUnsupported},
		{"image/gif", FormatUnsupported},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatUnsupported},
	}
	for _, tc := range tests {
		t.Run(tc.mediaType, func(t *testing.T) {
			assert.Equal(t, tc.want, Sniff(tc.mediaType))
		})
	}
}

func TestSniff_SupportedMediaTypesAreTotal(t *testing.T) {
	seen := map[Format]bool{}
	for _, mt := range SupportedMediaTypes() {
		f := Sniff(mt)
		assert.NotEqual(t, FormatUnsupported, f, mt)
		seen[f] = true
	}
	for _, f := range SupportedFormats() {
		assert.True(t, seen[f], "format %s unreachable from any media type", f)
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "pdf", FormatPDF.String())
	assert.Equal(t, "word", FormatWordDoc.String())
	assert.Equal(t, "presentation", FormatPresentation.String())
	assert.Equal(t, "image", FormatImage.String())
	assert.Equal(t, "unsupported", FormatUnsupported.String())
	assert.Equal(t, "unsupported", Format(99).String())
}

func TestResolveMediaType(t *testing.T) {
	docx := buildDOCX(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`)
	pptx := buildZip(t, map[string]string{"ppt/presentation.xml": "<p/>", "ppt/slides/slide1.xml": slideXML("x")})
	pdf := buildPDF(t, []string{"x"})

	tests := []struct {
		name     string
		declared string
		fileName string
		data     []byte
		want     string
	}{
		{"specific type kept", "application/PDF", "cv.docx", docx, MimePDF},
		{"docx behind zip", "application/zip", "cv.bin", docx, MimeDOCX},
		{"pptx behind octet-stream", "application/octet-stream", "", pptx, MimePPTX},
		{"pdf sniffed from bytes", "", "upload", pdf, MimePDF},
		{"png sniffed from bytes", "binary/octet-stream", "", buildPNG(t), MimePNG},
		{"extension fallback", "application/octet-stream", "resume.DOC", []byte("????"), MimeDOC},
		{"unknown stays generic", "application/octet-stream", "notes", []byte("hello"), "application/octet-stream"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveMediaType(tc.declared, tc.fileName, tc.data))
		})
	}
}
