package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "general"},
		{name: "whitespace", in: "  \t ", want: "general"},
		{name: "mixed_case", in: " Sci-Fi ", want: "sci-fi"},
		{name: "already_canonical", in: "fantasy", want: "fantasy"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Canonicalize(got), "idempotent")
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Sci-Fi", Label("sci-fi"))
	assert.Equal(t, "Science Fiction", Label("  science   FICTION "))
	assert.Equal(t, "General", Label(""))
}

func TestFacetsKeepFirstSeenLabel(t *testing.T) {
	books := []Book{
		{ID: "1", Details: Details{Genre: "sci-fi"}},
		{ID: "2", Details: Details{Genre: "Sci-Fi"}},
		{ID: "3", Details: Details{Genre: "Fantasy"}},
	}
	assert.Equal(t, []Facet{
		{Key: "all", Label: "All"},
		{Key: "sci-fi", Label: "Sci-Fi"},
		{Key: "fantasy", Label: "Fantasy"},
	}, Facets(books))
}

func TestFacetsUseShelfBeforeGenre(t *testing.T) {
	books := []Book{
		{ID: "1", Details: Details{Genre: "Fiction"}, GenreShelf: "bedtime"},
		{ID: "2"},
	}
	assert.Equal(t, []Facet{
		{Key: "all", Label: "All"},
		{Key: "bedtime", Label: "Bedtime"},
		{Key: "general", Label: "General"},
	}, Facets(books))
}

func TestFacetsEmptyLibrary(t *testing.T) {
	assert.Equal(t, []Facet{{Key: "all", Label: "All"}}, Facets(nil))
}

func TestFilter(t *testing.T) {
	books := []Book{
		{ID: "1", Details: Details{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi"}},
		{ID: "2", Details: Details{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy"}},
		{ID: "3", Details: Details{Title: "Hyperion", Author: "Dan Simmons", Genre: "sci-fi"}},
	}
	ids := func(bs []Book) []string {
		out := []string{}
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	testCases := []struct {
		name  string
		query string
		facet string
		want  []string
	}{
		{name: "no_filter", facet: "all", want: []string{"1", "2", "3"}},
		{name: "empty_facet_means_all", want: []string{"1", "2", "3"}},
		{name: "all_any_case", facet: " All ", want: []string{"1", "2", "3"}},
		{name: "title_substring", query: " HOB ", facet: "all", want: []string{"2"}},
		{name: "author_substring", query: "simmons", facet: "all", want: []string{"3"}},
		{name: "facet_only", facet: "sci-fi", want: []string{"1", "3"}},
		{name: "facet_is_canonicalized", facet: "Sci-Fi", want: []string{"1", "3"}},
		{name: "query_and_facet", query: "dune", facet: "fantasy", want: []string{}},
		{name: "no_match", query: "zzz", facet: "all", want: []string{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Filter(books, tc.query, tc.facet)))
		})
	}
}

func TestFilterComposes(t *testing.T) {
	books := []Book{
		{ID: "1", Details: Details{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi"}},
		{ID: "2", Details: Details{Title: "Dune Messiah", Author: "Frank Herbert", Genre: "Classics"}},
		{ID: "3", Details: Details{Title: "Emma", Author: "Jane Austen", Genre: "classics"}},
	}
	for _, q := range []string{"", "dune", "austen", "x"} {
		for _, g := range []string{"all", "sci-fi", "classics", "general"} {
			direct := Filter(books, q, g)
			composed := Filter(Filter(books, q, "all"), "", g)
			assert.Equal(t, direct, composed, "q=%q g=%q", q, g)
		}
	}
}

func TestInLibrary(t *testing.T) {
	books := []Book{{ID: "42"}, {ID: "7"}}
	assert.True(t, InLibrary(books, "42"))
	assert.False(t, InLibrary(books, "4"))
	assert.False(t, InLibrary(books, ""))
	assert.False(t, InLibrary([]Book{{ID: ""}}, ""), "missing id never matches")
	assert.False(t, InLibrary([]Book{{ID: "9780131103627", Placeholder: true}}, "9780131103627"))
}

func TestIsISBN(t *testing.T) {
	testCases := []struct {
		in   string
		want bool
	}{
		{"9780131103627", true},
		{"978-0-13-110362-7", true},
		{"0131103628", true},
		{"013110362X", true},
		{"0 13 110362 x", true},
		{"013110362", false},
		{"97801311036270", false},
		{"The C Programming Language", false},
		{"", false},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, IsISBN(tc.in))
		})
	}
}

func TestShelfFallbacks(t *testing.T) {
	assert.Equal(t, "Kids", Book{GenreShelf: "Kids", Details: Details{Genre: "Fiction"}}.Shelf())
	assert.Equal(t, "Fiction", Book{Details: Details{Genre: " Fiction "}}.Shelf())
	assert.Equal(t, "General", Book{}.Shelf())
}
