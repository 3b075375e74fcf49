package library

import (
	"errors"
	"strings"
	"time"
)

// ErrValidationFailed marks input rejected before any request is made.
var ErrValidationFailed = errors.New("validation failed")

// DefaultShelf is used when a book carries neither a genre shelf nor a genre.
const DefaultShelf = "General"

// Details holds the descriptive metadata shared by owned books and candidates.
type Details struct {
	Title           string
	Author          string
	Genre           string
	Publisher       string
	PublicationYear int
	PageCount       int
	Description     string
	ISBN            string
	ISBN10          string
	ISBN13          string
	CoverURL        string
	AgeMin          int
	AgeMax          int
}

// BestISBN returns the most specific ISBN available.
func (d Details) BestISBN() string {
	for _, s := range []string{d.ISBN13, d.ISBN, d.ISBN10} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Book is an entry confirmed present in the user's library.
// ID is the server-assigned id in decimal form. When the server listed the
// entry without an id, ID holds its ISBN and Placeholder is set; such an id
// only keys the list and is never sent back to the server.
type Book struct {
	ID          string
	Placeholder bool
	Details
	GenreShelf string
	AgeShelf   string
	DateAdded  time.Time
}

// Shelf is the genre the library is grouped by.
func (b Book) Shelf() string {
	if s := strings.TrimSpace(b.GenreShelf); s != "" {
		return s
	}
	if s := strings.TrimSpace(b.Genre); s != "" {
		return s
	}
	return DefaultShelf
}

// Candidate is an unpersisted lookup or recommendation result.
// Key is a local placeholder and never leaves the client.
// ServerID is set only when the backend already knows the book.
type Candidate struct {
	Key      string
	ServerID string
	Details
}

// RecommendationQuery describes the book recommendations are requested for.
type RecommendationQuery struct {
	BookID string
	ISBN   string
	Details
	GenreShelf string
	AgeShelf   string
}

// QueryFor builds a recommendation query from a library book.
func QueryFor(b Book) RecommendationQuery {
	q := RecommendationQuery{
		ISBN:       b.BestISBN(),
		Details:    b.Details,
		GenreShelf: b.Shelf(),
		AgeShelf:   b.AgeShelf,
	}
	if !b.Placeholder {
		q.BookID = b.ID
	}
	return q
}

type Recommendation struct {
	AgeRecommendation string
	SuggestedMinAge   int
	SuggestedMaxAge   int
	Reasoning         string
	Themes            []string
	ReadingLevel      string
	Similar           []Candidate
}
