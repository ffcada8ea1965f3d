package extract

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/require"

	"resume-parser/internal/extract/extracttest"
)

const emptyRelationships = extracttest.EmptyRelationships

func buildPDF(t *testing.T, pages ...[]string) []byte { return extracttest.PDF(t, pages...) }

func buildPDFContent(t *testing.T, streams ...string) []byte {
	return extracttest.PDFContent(t, streams...)
}

func buildZip(t *testing.T, entries map[string]string, order ...string) []byte {
	return extracttest.Zip(t, entries, order...)
}

func buildDOCX(t *testing.T, body string) []byte { return extracttest.DOCX(t, body) }

func slideXML(runs ...string) string { return extracttest.SlideXML(runs...) }

func buildPNG(t *testing.T) []byte { return extracttest.PNG(t) }

// buildWordStreams lays out a Word 97 WordDocument stream holding text in a
// single piece, plus the 1Table stream describing it.
func buildWordStreams(t *testing.T, text string, compressed bool) map[string][]byte {
	t.Helper()

	const (
		csw   = 14
		cslw  = 22
		pairs = 93
	)
	fibLen := fibBaseSize + 2 + csw*2 + 2 + cslw*4 + 2 + pairs*8
	wordDoc := make([]byte, fibLen)
	binary.LittleEndian.PutUint16(wordDoc[0:], wordIdent)
	binary.LittleEndian.PutUint16(wordDoc[fibFlagsOffset:], fibFlagWhichTable)

	off := fibBaseSize
	binary.LittleEndian.PutUint16(wordDoc[off:], csw)
	off += 2 + csw*2
	binary.LittleEndian.PutUint16(wordDoc[off:], cslw)
	off += 2
	lwStart := off
	off += cslw * 4
	binary.LittleEndian.PutUint16(wordDoc[off:], pairs)
	fcLcbStart := off + 2

	var (
		encoded []byte
		cps     int
		fc      uint32
	)
	textStart := len(wordDoc)
	if compressed {
		for _, r := range text {
			b, ok := cp1252Byte(r)
			require.True(t, ok, "rune %q not in cp1252", r)
			encoded = append(encoded, b)
		}
		cps = len(encoded)
		fc = uint32(textStart*2) | fcCompressed
	} else {
		units := utf16.Encode([]rune(text))
		encoded = make([]byte, len(units)*2)
		for i, u := range units {
			binary.LittleEndian.PutUint16(encoded[i*2:], u)
		}
		cps = len(units)
		fc = uint32(textStart)
	}
	wordDoc = append(wordDoc, encoded...)
	binary.LittleEndian.PutUint32(wordDoc[lwStart+fibCcpTextIndex*4:], uint32(cps))

	plcPcd := make([]byte, 8+pcdSize)
	binary.LittleEndian.PutUint32(plcPcd[0:], 0)
	binary.LittleEndian.PutUint32(plcPcd[4:], uint32(cps))
	binary.LittleEndian.PutUint32(plcPcd[8+2:], fc)

	table := make([]byte, 16) // leading bytes so fcClx is non-zero
	clxStart := len(table)
	table = append(table, clxPrc, 2, 0, 0xAA, 0xBB)
	table = append(table, clxPcdt)
	table = binary.LittleEndian.AppendUint32(table, uint32(len(plcPcd)))
	table = append(table, plcPcd...)

	binary.LittleEndian.PutUint32(wordDoc[fcLcbStart+fibClxIndex*4:], uint32(clxStart))
	binary.LittleEndian.PutUint32(wordDoc[fcLcbStart+(fibClxIndex+1)*4:], uint32(len(table)-clxStart))

	return map[string][]byte{
		streamWordDocument: wordDoc,
		streamTable1:       table,
	}
}

func cp1252Byte(r rune) (byte, bool) {
	if r < 0x80 || (r >= 0xA0 && r <= 0xFF) {
		return byte(r), true
	}
	return 0, false
}

func pptRecord(verInst, recType uint16, body []byte) []byte {
	out := make([]byte, pptRecordHeaderSize, pptRecordHeaderSize+len(body))
	binary.LittleEndian.PutUint16(out[0:], verInst)
	binary.LittleEndian.PutUint16(out[2:], recType)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	return append(out, body...)
}

func pptContainer(instance, recType uint16, children ...[]byte) []byte {
	return pptRecord(instance<<4|pptContainerVersion, recType, bytes.Join(children, nil))
}

func utf16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
