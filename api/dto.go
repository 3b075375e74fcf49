package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"little_library/library"
	"little_library/logger"
)

// ID accepts a JSON number, string or null and keeps the decimal text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// bookDTO is the wire shape of a book, shared by library entries and lookups.
type bookDTO struct {
	ID              ID     `json:"id,omitempty"`
	Title           string `json:"title,omitempty"`
	Author          string `json:"author,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	ISBN10          string `json:"isbn10,omitempty"`
	ISBN13          string `json:"isbn13,omitempty"`
	Description     string `json:"description,omitempty"`
	Genre           string `json:"genre,omitempty"`
	AgeRangeMin     int    `json:"ageRangeMin,omitempty"`
	AgeRangeMax     int    `json:"ageRangeMax,omitempty"`
	CoverImageURL   string `json:"coverImageUrl,omitempty"`
	CoverURL        string `json:"coverUrl,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationYear int    `json:"publicationYear,omitempty"`
	PageCount       int    `json:"pageCount,omitempty"`
	GoogleBooksID   string `json:"googleBooksId,omitempty"`
	DateAdded       string `json:"dateAdded,omitempty"`
	GenreShelf      string `json:"genreShelf,omitempty"`
	AgeShelf        string `json:"ageShelf,omitempty"`
}

func (d bookDTO) details() library.Details {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Untitled"
	}
	author := strings.TrimSpace(d.Author)
	if author == "" {
		author = "Unknown"
	}
	cover := d.CoverImageURL
	if cover == "" {
		cover = d.CoverURL
	}
	return library.Details{
		Title:           title,
		Author:          author,
		Genre:           strings.TrimSpace(d.Genre),
		Publisher:       strings.TrimSpace(d.Publisher),
		PublicationYear: d.PublicationYear,
		PageCount:       d.PageCount,
		Description:     plainText(d.Description),
		ISBN:            strings.TrimSpace(d.ISBN),
		ISBN10:          strings.TrimSpace(d.ISBN10),
		ISBN13:          strings.TrimSpace(d.ISBN13),
		CoverURL:        secureURL(cover),
		AgeMin:          d.AgeRangeMin,
		AgeMax:          d.AgeRangeMax,
	}
}

// toBook maps a library entry. Entries without an id fall back to their
// ISBN when allowed; ok is false when no identity remains.
func (d bookDTO) toBook(isbnFallback bool) (library.Book, bool) {
	b := library.Book{
		ID:         string(d.ID),
		Details:    d.details(),
		GenreShelf: strings.TrimSpace(d.GenreShelf),
		AgeShelf:   strings.TrimSpace(d.AgeShelf),
		DateAdded:  parseDate(d.DateAdded),
	}
	if b.GenreShelf == "" {
		b.GenreShelf = b.Shelf()
	}
	if b.ID == "" && isbnFallback {
		b.ID = b.BestISBN()
		b.Placeholder = b.ID != ""
	}
	return b, b.ID != ""
}

func (d bookDTO) toCandidate() library.Candidate {
	return library.Candidate{
		Key:      uuid.NewString(),
		ServerID: string(d.ID),
		Details:  d.details(),
	}
}

func fromCandidate(c library.Candidate) bookDTO {
	return bookDTO{
		ID:              ID(c.ServerID),
		Title:           c.Title,
		Author:          c.Author,
		ISBN:            c.ISBN,
		ISBN10:          c.ISBN10,
		ISBN13:          c.ISBN13,
		Description:     c.Description,
		Genre:           c.Genre,
		AgeRangeMin:     c.AgeMin,
		AgeRangeMax:     c.AgeMax,
		CoverImageURL:   c.CoverURL,
		Publisher:       c.Publisher,
		PublicationYear: c.PublicationYear,
		PageCount:       c.PageCount,
	}
}

func toBooks(dtos []bookDTO) []library.Book {
	books := make([]library.Book, 0, len(dtos))
	for _, d := range dtos {
		b, ok := d.toBook(true)
		if !ok {
			logger.Warn("dropping library entry without id", "title", d.Title)
			continue
		}
		books = append(books, b)
	}
	return books
}

func toCandidates(dtos []bookDTO) []library.Candidate {
	out := make([]library.Candidate, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toCandidate())
	}
	return out
}

func secureURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// plainText drops markup from descriptions that arrive as HTML snippets.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("br, p, li").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type addRequest struct {
	Book       bookDTO `json:"book"`
	GenreShelf string  `json:"genreShelf"`
	AgeShelf   string  `json:"ageShelf"`
}

type recommendationRequest struct {
	BookID          ID     `json:"bookId,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publicationYear"`
	PageCount       int    `json:"pageCount"`
	GenreShelf      string `json:"genreShelf"`
	AgeShelf        string `json:"ageShelf"`
}

type recommendationResponse struct {
	AgeRecommendation string    `json:"ageRecommendation"`
	SuggestedMinAge   int       `json:"suggestedMinAge"`
	SuggestedMaxAge   int       `json:"suggestedMaxAge"`
	Reasoning         string    `json:"reasoning"`
	SimilarBooks      []bookDTO `json:"similarBooks"`
	Themes            []string  `json:"themes"`
	ReadingLevel      string    `json:"readingLevel"`
}

func (r recommendationResponse) toRecommendation() library.Recommendation {
	return library.Recommendation{
		AgeRecommendation: r.AgeRecommendation,
		SuggestedMinAge:   r.SuggestedMinAge,
		SuggestedMaxAge:   r.SuggestedMaxAge,
		Reasoning:         strings.TrimSpace(r.Reasoning),
		Themes:            r.Themes,
		ReadingLevel:      r.ReadingLevel,
		Similar:           toCandidates(r.SimilarBooks),
	}
}
