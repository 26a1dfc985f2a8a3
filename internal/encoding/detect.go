// Package encoding normalises uploaded text files: it decodes them to UTF-8
// and works out which delimiter a CSV export uses.
package encoding

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decoderFor picks the decoder for a sample of the input and how many
// leading bytes to drop. A nil decoder means the input is already UTF-8.
//
// Byte order marks win, then valid UTF-8, then chardet's best guess.
// Anything else is read as Windows-1252, which is what spreadsheet exports on
// Spanish-locale machines produce.
func decoderFor(sample []byte) (encoding.Encoding, int) {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return nil, len(bomUTF8)
	case bytes.HasPrefix(sample, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), 0
	case bytes.HasPrefix(sample, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), 0
	case utf8.Valid(sample):
		return nil, 0
	}

	if result, err := chardet.NewTextDetector().DetectBest(sample); err == nil {
		switch result.Charset {
		case "UTF-8":
			return nil, 0
		case "ISO-8859-1", "windows-1252":
			return charmap.Windows1252, 0
		case "ISO-8859-15":
			return charmap.ISO8859_15, 0
		}
	}

	return charmap.Windows1252, 0
}

// NewUTF8Reader returns a reader that yields the content of r as UTF-8.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	enc, skip := decoderFor(sample)
	if skip > 0 {
		_, _ = br.Discard(skip)
	}

	if enc == nil {
		return br, nil
	}

	return transform.NewReader(br, enc.NewDecoder()), nil
}

// delimiters are tried in order; the first wins a tie.
var delimiters = []rune{';', ',', '\t', '|'}

// SniffDelimiter guesses the field separator of a CSV sample from its
// first non-empty line. It falls back to a comma.
func SniffDelimiter(sample []byte) rune {
	for line := range bytes.Lines(sample) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		best, bestCount := ',', 0

		for _, d := range delimiters {
			if n := countOutsideQuotes(line, d); n > bestCount {
				best, bestCount = d, n
			}
		}

		return best
	}

	return ','
}

func countOutsideQuotes(line []byte, d rune) int {
	var (
		n      int
		quoted bool
	)

	for _, r := range string(line) {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			n++
		}
	}

	return n
}

// NewCSVReader decodes r to UTF-8 and returns a lenient CSV reader set up
// with the delimiter the content appears to use.
func NewCSVReader(r io.Reader) (*csv.Reader, error) {
	utf8r, err := NewUTF8Reader(r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(utf8r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = SniffDelimiter(sample)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	return reader, nil
}
