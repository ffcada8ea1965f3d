package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ResolveMediaType returns the declared media type when it is specific, and
// otherwise infers one from the payload and file name. It is meant for upload
// boundaries where browsers and CLIs report generic types.
func ResolveMediaType(declared, fileName string, data []byte) string {
	clean := NormalizeMediaType(declared)
	switch clean {
	case mimeUnknown, mimeOctet, mimeZip, "binary/octet-stream":
	default:
		return clean
	}

	if mapped := mapOOXMLFromZip(data); mapped != "" {
		return mapped
	}
	if len(data) > 0 {
		detected := mimetype.Detect(data)
		for _, supported := range SupportedMediaTypes() {
			if detected.Is(supported) {
				return supported
			}
		}
	}
	if byExt := mediaTypeFromExt(fileName); byExt != "" {
		return byExt
	}
	return clean
}

func mediaTypeFromExt(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".doc":
		return MimeDOC
	case ".docx":
		return MimeDOCX
	case ".ppt":
		return MimePPT
	case ".pptx":
		return MimePPTX
	case ".jpg", ".jpeg":
		return MimeJPEG
	case ".png":
		return MimePNG
	default:
		return ""
	}
}

func mapOOXMLFromZip(data []byte) string {
	if !isZip(data) {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch strings.ReplaceAll(f.Name, "\\", "/") {
		case "word/document.xml":
			return MimeDOCX
		case "ppt/presentation.xml":
			return MimePPTX
		}
	}
	return ""
}

var (
	zipMagic = []byte("PK\x03\x04")
	cfbMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

func isCFB(data []byte) bool {
	return bytes.HasPrefix(data, cfbMagic)
}
