package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshal(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want ID
	}{
		{name: "number", in: `{"id": 42}`, want: "42"},
		{name: "string", in: `{"id": " 42 "}`, want: "42"},
		{name: "null", in: `{"id": null}`, want: ""},
		{name: "missing", in: `{}`, want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var d bookDTO
			require.NoError(t, json.Unmarshal([]byte(tc.in), &d))
			assert.Equal(t, tc.want, d.ID)
		})
	}
}

func TestIDMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
		D ID `json:"d,omitempty"`
	}{A: "42", B: "local-1", C: ""})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 42, "b": "local-1", "c": null}`, string(out))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain text", plainText("  plain \n text "))
	assert.Equal(t, "First. Second & third.", plainText("<p>First.</p><p>Second &amp; third.</p>"))
	assert.Equal(t, "line one line two", plainText("line one<br>line two"))
}

func TestSecureURL(t *testing.T) {
	assert.Equal(t, "https://a/b.jpg", secureURL("http://a/b.jpg"))
	assert.Equal(t, "https://a/b.jpg", secureURL("https://a/b.jpg"))
	assert.Equal(t, "", secureURL(""))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), parseDate("2024-03-01T10:30:00"))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), parseDate("2024-03-01"))
	assert.True(t, parseDate("yesterday").IsZero())
}

func TestAddRequestShape(t *testing.T) {
	req := addRequest{Book: bookDTO{Title: "Dune", ISBN13: "9780441013593"}, GenreShelf: "General"}
	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"book": {"title": "Dune", "isbn13": "9780441013593"}, "genreShelf": "General", "ageShelf": ""}`, string(out))
}
