package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReadTextLines(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("9780547928227\r\n0131103628\r\n"))
	require.NoError(t, err)
	gbk, err := simplifiedchinese.GB18030.NewEncoder().Bytes([]byte("三体\n9787536692930\n"))
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want []string
	}{
		{"plain", []byte("a\nb"), []string{"a", "b"}},
		{"utf8 bom and crlf", append([]byte{0xEF, 0xBB, 0xBF}, "a\r\nb\rc"...), []string{"a", "b", "c"}},
		{"utf16 le", utf16le, []string{"9780547928227", "0131103628", ""}},
		{"gb18030", gbk, []string{"三体", "9787536692930", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadTextLines(writeFile(t, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTextLinesMissing(t *testing.T) {
	_, err := ReadTextLines(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
