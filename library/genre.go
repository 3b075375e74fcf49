package library

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	FacetAll      = "all"
	FacetAllLabel = "All"
	defaultGenre  = "general"
)

// Facet is a genre filter derived from the current list.
type Facet struct {
	Key   string
	Label string
}

var titleCaser = cases.Title(language.Und)

// Canonicalize maps a genre string to its facet key.
func Canonicalize(genre string) string {
	key := strings.ToLower(strings.TrimSpace(genre))
	if key == "" {
		return defaultGenre
	}
	return key
}

// Label renders a genre for display, e.g. "sci-fi" -> "Sci-Fi".
func Label(genre string) string {
	words := strings.Fields(genre)
	if len(words) == 0 {
		return DefaultShelf
	}
	for i, w := range words {
		parts := strings.Split(w, "-")
		for j, p := range parts {
			parts[j] = titleCaser.String(p)
		}
		words[i] = strings.Join(parts, "-")
	}
	return strings.Join(words, " ")
}

// Facets lists All followed by one facet per genre, in first-seen order.
// The first book carrying a genre decides its label.
func Facets(books []Book) []Facet {
	facets := []Facet{{Key: FacetAll, Label: FacetAllLabel}}
	seen := make(map[string]bool)
	for _, b := range books {
		key := Canonicalize(b.Shelf())
		if seen[key] {
			continue
		}
		seen[key] = true
		facets = append(facets, Facet{Key: key, Label: Label(b.Shelf())})
	}
	return facets
}

// Filter keeps books matching the query (title or author substring) and facet.
func Filter(books []Book, query, facet string) []Book {
	q := strings.ToLower(strings.TrimSpace(query))
	want := Canonicalize(facet)
	anyGenre := strings.TrimSpace(facet) == "" || want == FacetAll

	out := make([]Book, 0, len(books))
	for _, b := range books {
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Author), q) {
			continue
		}
		if !anyGenre && Canonicalize(b.Shelf()) != want {
			continue
		}
		out = append(out, b)
	}
	return out
}

// InLibrary reports whether a book with the given server id is in books.
// An empty id never matches, nor does a placeholder entry.
func InLibrary(books []Book, id string) bool {
	if id == "" {
		return false
	}
	for _, b := range books {
		if b.ID == id && !b.Placeholder {
			return true
		}
	}
	return false
}

var (
	isbnStrip = regexp.MustCompile(`[-\s]`)
	isbn10    = regexp.MustCompile(`^\d{9}[\dXx]$`)
	isbn13    = regexp.MustCompile(`^\d{13}$`)
)

// IsISBN reports whether s looks like an ISBN-10 or ISBN-13.
func IsISBN(s string) bool {
	s = isbnStrip.ReplaceAllString(s, "")
	return isbn10.MatchString(s) || isbn13.MatchString(s)
}
