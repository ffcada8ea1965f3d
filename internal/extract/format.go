package extract

import "strings"

// Format is the closed set of extraction strategies a declared media type can map to.
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	FormatWordDoc
	FormatPresentation
	FormatImage
)

const (
	MimePDF      = "application/pdf"
	MimeDOC      = "application/msword"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimePPT      = "application/vnd.ms-powerpoint"
	MimePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MimeJPEG     = "image/jpeg"
	MimeJPEGAlt  = "image/jpg"
	MimePNG      = "image/png"
	mimeZip      = "application/zip"
	mimeOctet    = "application/octet-stream"
	mimeUnknown  = ""
	formatNameNA = "unsupported"
)

var mediaTypeFormats = map[string]Format{
	MimePDF:     FormatPDF,
	MimeDOC:     FormatWordDoc,
	MimeDOCX:    FormatWordDoc,
	MimePPT:     FormatPresentation,
	MimePPTX:    FormatPresentation,
	MimeJPEG:    FormatImage,
	MimeJPEGAlt: FormatImage,
	MimePNG:     FormatImage,
}

// Sniff maps a declared media type to an extraction strategy. Anything it does
// not recognize is FormatUnsupported.
func Sniff(mediaType string) Format {
	if f, ok := mediaTypeFormats[NormalizeMediaType(mediaType)]; ok {
		return f
	}
	return FormatUnsupported
}

// SupportedFormats lists every format that has an extractor.
func SupportedFormats() []Format {
	return []Format{FormatPDF, FormatWordDoc, FormatPresentation, FormatImage}
}

// SupportedMediaTypes lists the declared media types Sniff accepts.
func SupportedMediaTypes() []string {
	return []string{MimePDF, MimeDOC, MimeDOCX, MimePPT, MimePPTX, MimeJPEG, MimeJPEGAlt, MimePNG}
}

// NormalizeMediaType lower-cases a media type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
}

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatWordDoc:
		return "word"
	case FormatPresentation:
		return "presentation"
	case FormatImage:
		return "image"
	default:
		return formatNameNA
	}
}
