package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// ReadTextLines reads a text file in whatever encoding a spreadsheet or
// editor saved it in and returns its lines with endings normalized.
func ReadTextLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n"), nil
}

// decodeText handles UTF-8 (BOM optional), UTF-16 with a BOM, and
// GB18030 which covers GBK.
func decodeText(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), nil
	case bytes.HasPrefix(data, bomUTF16BE):
		return transformAll(data, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case bytes.HasPrefix(data, bomUTF16LE):
		return transformAll(data, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case utf8.Valid(data):
		return string(data), nil
	}

	if s, err := transformAll(data, simplifiedchinese.GB18030.NewDecoder()); err == nil && utf8.ValidString(s) {
		return s, nil
	}
	// Keep what we have; invalid bytes only spoil the lines they are on.
	return string(data), nil
}

func transformAll(data []byte, t transform.Transformer) (string, error) {
	b, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), t))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
