package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
)

// Word 97-2003 binary layout constants.
const (
	wordIdent          = 0xA5EC
	fibFlagsOffset     = 0x0A
	fibFlagEncrypted   = 0x0100
	fibFlagWhichTable  = 0x0200
	fibBaseSize        = 32
	fibCcpTextIndex    = 3  // FibRgLw97.ccpText
	fibClxIndex        = 66 // FibRgFcLcb97.fcClx, counted in uint32s
	clxPrc             = 0x01
	clxPcdt            = 0x02
	pcdSize            = 8
	fcCompressed       = 0x40000000
	fcMask             = 0x3FFFFFFF
	streamWordDocument = "WordDocument"
	streamTable0       = "0Table"
	streamTable1       = "1Table"
)

type wordFIB struct {
	useTable1 bool
	encrypted bool
	ccpText   uint32
	fcClx     uint32
	lcbClx    uint32
}

type wordPiece struct {
	cpStart, cpEnd uint32
	fc             uint32
	compressed     bool
}

func extractDOC(ctx context.Context, data []byte) (string, error) {
	streams, err := readCFBStreams(data, streamWordDocument, streamTable0, streamTable1)
	if err != nil {
		return "", fmt.Errorf("doc: %w", err)
	}
	return wordStreamsText(ctx, streams)
}

func wordStreamsText(ctx context.Context, streams map[string][]byte) (string, error) {
	wordDoc := streams[streamWordDocument]
	if wordDoc == nil {
		return "", errors.New("doc: WordDocument stream missing")
	}

	fib, err := parseWordFIB(wordDoc)
	if err != nil {
		return "", fmt.Errorf("doc: %w", err)
	}
	if fib.encrypted {
		return "", errors.New("doc: document is encrypted")
	}

	table := streams[streamTable0]
	if fib.useTable1 {
		table = streams[streamTable1]
	}
	if table == nil {
		return "", errors.New("doc: table stream missing")
	}

	pieces, err := parsePieceTable(table, fib.fcClx, fib.lcbClx)
	if err != nil {
		return "", fmt.Errorf("doc: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := readPieces(wordDoc, pieces, fib.ccpText)
	if err != nil {
		return "", fmt.Errorf("doc: %w", err)
	}
	return cleanWordText(raw), nil
}

// readCFBStreams loads the named streams of an OLE compound file. The first
// stream with a given name wins.
func readCFBStreams(data []byte, names ...string) (map[string][]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}
	out := make(map[string][]byte, len(names))
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if !want[entry.Name] {
			continue
		}
		if _, seen := out[entry.Name]; seen {
			continue
		}
		buf, readErr := io.ReadAll(entry)
		if readErr != nil {
			return nil, fmt.Errorf("read stream %s: %w", entry.Name, readErr)
		}
		out[entry.Name] = buf
	}
	return out, nil
}

func parseWordFIB(b []byte) (wordFIB, error) {
	if len(b) < fibBaseSize+2 {
		return wordFIB{}, errors.New("WordDocument stream too short")
	}
	if le16(b, 0) != wordIdent {
		return wordFIB{}, errors.New("not a Word 97 or later document")
	}
	flags := le16(b, fibFlagsOffset)
	fib := wordFIB{
		useTable1: flags&fibFlagWhichTable != 0,
		encrypted: flags&fibFlagEncrypted != 0,
	}

	off := fibBaseSize
	csw := int(le16(b, off))
	off += 2 + csw*2
	if len(b) < off+2 {
		return wordFIB{}, errors.New("truncated file information block")
	}
	cslw := int(le16(b, off))
	off += 2
	if cslw <= fibCcpTextIndex || len(b) < off+cslw*4 {
		return wordFIB{}, errors.New("truncated FibRgLw")
	}
	fib.ccpText = le32(b, off+fibCcpTextIndex*4)
	off += cslw * 4

	if len(b) < off+2 {
		return wordFIB{}, errors.New("truncated file information block")
	}
	pairs := int(le16(b, off))
	off += 2
	if pairs*2 < fibClxIndex+2 || len(b) < off+(fibClxIndex+2)*4 {
		return wordFIB{}, errors.New("truncated FibRgFcLcb")
	}
	fib.fcClx = le32(b, off+fibClxIndex*4)
	fib.lcbClx = le32(b, off+(fibClxIndex+1)*4)
	return fib, nil
}

func parsePieceTable(table []byte, fcClx, lcbClx uint32) ([]wordPiece, error) {
	end := uint64(fcClx) + uint64(lcbClx)
	if lcbClx == 0 || end > uint64(len(table)) {
		return nil, errors.New("clx out of range")
	}
	clx := table[fcClx:end]
	for i := 0; i < len(clx); {
		switch clx[i] {
		case clxPrc:
			if i+3 > len(clx) {
				return nil, errors.New("truncated Prc")
			}
			size := int(int16(le16(clx, i+1)))
			if size < 0 {
				return nil, errors.New("negative Prc size")
			}
			i += 3 + size
		case clxPcdt:
			if i+5 > len(clx) {
				return nil, errors.New("truncated Pcdt")
			}
			lcb := int(le32(clx, i+1))
			start := i + 5
			if lcb < 0 || start+lcb > len(clx) {
				return nil, errors.New("PlcPcd out of range")
			}
			return decodePlcPcd(clx[start : start+lcb])
		default:
			return nil, fmt.Errorf("unexpected clx entry 0x%02X", clx[i])
		}
	}
	return nil, errors.New("piece table not found")
}

func decodePlcPcd(b []byte) ([]wordPiece, error) {
	if len(b) < 4+4+pcdSize || (len(b)-4)%(4+pcdSize) != 0 {
		return nil, errors.New("malformed PlcPcd")
	}
	n := (len(b) - 4) / (4 + pcdSize)
	descriptors := (n + 1) * 4
	pieces := make([]wordPiece, 0, n)
	for k := 0; k < n; k++ {
		start, end := le32(b, k*4), le32(b, (k+1)*4)
		if end < start {
			return nil, errors.New("piece boundaries out of order")
		}
		fc := le32(b, descriptors+k*pcdSize+2)
		pieces = append(pieces, wordPiece{
			cpStart:    start,
			cpEnd:      end,
			fc:         fc & fcMask,
			compressed: fc&fcCompressed != 0,
		})
	}
	return pieces, nil
}

// readPieces decodes the main document story, which spans character positions
// [0, ccpText). A zero ccpText reads every piece.
func readPieces(wordDoc []byte, pieces []wordPiece, ccpText uint32) (string, error) {
	var sb strings.Builder
	decoder := charmap.Windows1252.NewDecoder()
	for _, p := range pieces {
		start, end := p.cpStart, p.cpEnd
		if ccpText > 0 {
			if start >= ccpText {
				break
			}
			if end > ccpText {
				end = ccpText
			}
		}
		count := int(end - start)
		if count == 0 {
			continue
		}
		if p.compressed {
			off := int(p.fc / 2)
			if off+count > len(wordDoc) {
				return "", errors.New("compressed piece out of range")
			}
			decoded, err := decoder.Bytes(wordDoc[off : off+count])
			if err != nil {
				return "", fmt.Errorf("decode piece: %w", err)
			}
			sb.Write(decoded)
			continue
		}
		off := int(p.fc)
		if off+count*2 > len(wordDoc) {
			return "", errors.New("piece out of range")
		}
		units := make([]uint16, count)
		for i := range units {
			units[i] = le16(wordDoc, off+i*2)
		}
		sb.WriteString(string(utf16.Decode(units)))
	}
	return sb.String(), nil
}

// cleanWordText maps Word control characters to plain text and keeps only the
// displayed result of fields.
func cleanWordText(raw string) string {
	var (
		sb     strings.Builder
		fields []bool // true while inside a field's code part
		inCode int
	)
	for _, r := range raw {
		switch r {
		case 0x13:
			fields = append(fields, true)
			inCode++
			continue
		case 0x14:
			if n := len(fields); n > 0 && fields[n-1] {
				fields[n-1] = false
				inCode--
			}
			continue
		case 0x15:
			if n := len(fields); n > 0 {
				if fields[n-1] {
					inCode--
				}
				fields = fields[:n-1]
			}
			continue
		}
		if inCode > 0 {
			continue
		}
		switch {
		case r == '\r' || r == 0x0B || r == 0x0C:
			sb.WriteByte('\n')
		case r == 0x07 || r == '\t':
			sb.WriteByte('\t')
		case r == 0x1E:
			sb.WriteByte('-')
		case r < 0x20:
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func le16(b []byte, off int) uint16 {
	return binary.LittleEndian.Uint16(b[off : off+2])
}

func le32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}
