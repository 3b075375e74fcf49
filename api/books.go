package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"little_library/library"
)

// ListLibrary returns the signed-in user's library.
func (c *Client) ListLibrary(ctx context.Context) ([]library.Book, error) {
	var dtos []bookDTO
	if err := c.do(ctx, "load library", http.MethodGet, "/api/books", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return toBooks(dtos), nil
}

var _ library.Backend = (*Client)(nil)

var isbnSeparators = regexp.MustCompile(`[-\s]`)

func (c *Client) LookupByISBN(ctx context.Context, isbn string) ([]library.Candidate, error) {
	isbn = isbnSeparators.ReplaceAllString(isbn, "")
	if isbn == "" {
		return nil, fmt.Errorf("lookup: empty isbn: %w", ErrValidationFailed)
	}
	return c.lookup(ctx, url.Values{"isbn": {isbn}})
}

func (c *Client) LookupByTitle(ctx context.Context, title string) ([]library.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("lookup: empty title: %w", ErrValidationFailed)
	}
	return c.lookup(ctx, url.Values{"title": {title}})
}

// Lookup searches by ISBN when the query looks like one, otherwise by title.
func (c *Client) Lookup(ctx context.Context, query string) ([]library.Candidate, error) {
	if library.IsISBN(query) {
		return c.LookupByISBN(ctx, query)
	}
	return c.LookupByTitle(ctx, query)
}

func (c *Client) lookup(ctx context.Context, q url.Values) ([]library.Candidate, error) {
	var dtos []bookDTO
	if err := c.do(ctx, "lookup", http.MethodGet, "/api/books/lookup", q, nil, &dtos); err != nil {
		return nil, err
	}
	return toCandidates(dtos), nil
}

// AddToLibrary persists a candidate. The returned book has an empty ID if
// the server did not report one.
func (c *Client) AddToLibrary(ctx context.Context, cand library.Candidate, genreShelf, ageShelf string) (library.Book, error) {
	genreShelf = strings.TrimSpace(genreShelf)
	if genreShelf == "" {
		genreShelf = library.DefaultShelf
	}
	req := addRequest{
		Book:       fromCandidate(cand),
		GenreShelf: genreShelf,
		AgeShelf:   strings.TrimSpace(ageShelf),
	}
	var created bookDTO
	if err := c.do(ctx, "add to library", http.MethodPost, "/api/books/add-to-library", nil, req, &created); err != nil {
		return library.Book{}, err
	}
	book, _ := created.toBook(false)
	return book, nil
}

// RemoveFromLibrary deletes a library entry by its numeric server id.
func (c *Client) RemoveFromLibrary(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return fmt.Errorf("remove %q: numeric id required: %w", id, ErrValidationFailed)
	}
	path := fmt.Sprintf("/api/books/%d/remove-from-library", n)
	return c.do(ctx, "remove from library", http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) Recommend(ctx context.Context, q library.RecommendationQuery) (library.Recommendation, error) {
	req := recommendationRequest{
		BookID:          ID(q.BookID),
		ISBN:            q.ISBN,
		Title:           q.Title,
		Description:     q.Description,
		Author:          q.Author,
		Genre:           q.Genre,
		Publisher:       q.Publisher,
		PublicationYear: q.PublicationYear,
		PageCount:       q.PageCount,
		GenreShelf:      q.GenreShelf,
		AgeShelf:        q.AgeShelf,
	}
	var resp recommendationResponse
	if err := c.do(ctx, "recommendations", http.MethodPost, "/api/books/recommendations/query", nil, req, &resp); err != nil {
		return library.Recommendation{}, err
	}
	return resp.toRecommendation(), nil
}
