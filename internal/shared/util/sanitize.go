package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

const maxFileNameLen = 128

// SanitizeFileName turns an uploaded file name into a single safe key segment.
// Separators and control characters are replaced, traversal is rejected and
// long names are shortened with the extension kept.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if s == "" || s == "." {
		return "", errors.New("invalid file name")
	}
	if runes := []rune(s); len(runes) > maxFileNameLen {
		ext := []rune(path.Ext(s))
		if len(ext) > 16 {
			ext = nil
		}
		s = string(runes[:maxFileNameLen-len(ext)]) + string(ext)
	}
	return s, nil
}
