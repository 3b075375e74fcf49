package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"little_library/api"
	"little_library/api/apitest"
	"little_library/library"
)

var knr = apitest.Book{
	Title:     "The C Programming Language",
	Author:    "Brian W. Kernighan",
	ISBN13:    "9780131103627",
	ISBN10:    "0131103628",
	Genre:     "Computers",
	Publisher: "Prentice Hall",
}

func newClient(t *testing.T) (*api.Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, srv.Client(), api.NewSession("")), srv
}

func lastRequest(t *testing.T, srv *apitest.Server) apitest.Request {
	t.Helper()
	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	return reqs[len(reqs)-1]
}

func TestListLibraryNormalizes(t *testing.T) {
	client, srv := newClient(t)
	srv.SetLibrary("",
		apitest.Book{ID: 1, Genre: "fantasy", CoverImageURL: "http://covers.example/1.jpg"},
		apitest.Book{ID: 2, Title: "Emma", Author: "Jane Austen", Genre: "Classics", GenreShelf: "Bedtime",
			Description: "<p>A <b>comedy</b> of manners.</p>"},
		apitest.Book{Title: "No id", ISBN: "0131103628"},
		apitest.Book{Title: "Dropped"},
	)

	books, err := client.ListLibrary(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 3)

	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "Untitled", books[0].Title)
	assert.Equal(t, "Unknown", books[0].Author)
	assert.Equal(t, "fantasy", books[0].GenreShelf)
	assert.Equal(t, "https://covers.example/1.jpg", books[0].CoverURL)

	assert.Equal(t, "Bedtime", books[1].GenreShelf)
	assert.Equal(t, "Classics", books[1].Genre)
	assert.Equal(t, "A comedy of manners.", books[1].Description)

	assert.Equal(t, "0131103628", books[2].ID, "isbn stands in for a missing id")
	assert.True(t, books[2].Placeholder)
	assert.False(t, books[0].Placeholder)
	assert.Equal(t, library.DefaultShelf, books[2].GenreShelf)
}

func TestLookupChoosesParameter(t *testing.T) {
	client, srv := newClient(t)
	srv.AddCatalog(knr)

	testCases := []struct {
		name  string
		query string
		want  string
	}{
		{name: "isbn13", query: "978-0-13-110362-7", want: "isbn=9780131103627"},
		{name: "isbn10", query: "0131103628", want: "isbn=0131103628"},
		{name: "title", query: " programming ", want: "title=programming"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := client.Lookup(context.Background(), tc.query)
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, knr.Title, found[0].Title)
			assert.NotEmpty(t, found[0].Key)
			assert.Empty(t, found[0].ServerID)
			assert.Equal(t, tc.want, lastRequest(t, srv).Query)
		})
	}
}

func TestLookupValidation(t *testing.T) {
	client, srv := newClient(t)
	_, err := client.LookupByTitle(context.Background(), "  ")
	assert.ErrorIs(t, err, api.ErrValidationFailed)
	_, err = client.LookupByISBN(context.Background(), " - ")
	assert.ErrorIs(t, err, api.ErrValidationFailed)
	assert.Empty(t, srv.Requests())
}

func TestAddThenListKeepsID(t *testing.T) {
	client, srv := newClient(t)
	srv.AddCatalog(knr)
	srv.SetNextID(42)
	ctx := context.Background()

	found, err := client.LookupByISBN(ctx, "9780131103627")
	require.NoError(t, err)
	require.Len(t, found, 1)

	added, err := client.AddToLibrary(ctx, found[0], "", "")
	require.NoError(t, err)
	assert.Equal(t, "42", added.ID)
	assert.Equal(t, library.DefaultShelf, added.GenreShelf)
	assert.Equal(t, library.DefaultShelf, srv.Library("")[0].GenreShelf)

	books, err := client.ListLibrary(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "42", books[0].ID)
}

func TestRemove(t *testing.T) {
	client, srv := newClient(t)
	srv.SetLibrary("", apitest.Book{ID: 42, Title: "x"})

	require.NoError(t, client.RemoveFromLibrary(context.Background(), "42"))
	assert.Equal(t, "/api/books/42/remove-from-library", lastRequest(t, srv).Path)
	assert.Empty(t, srv.Library(""))

	before := len(srv.Requests())
	err := client.RemoveFromLibrary(context.Background(), "local-abc")
	assert.ErrorIs(t, err, api.ErrValidationFailed)
	assert.Len(t, srv.Requests(), before, "no request for an invalid id")
}

func TestRemoveRefusesBookWithoutServerID(t *testing.T) {
	client, srv := newClient(t)
	srv.SetLibrary("", apitest.Book{Title: "No id yet", ISBN13: "9780131103627"})
	ctrl := library.NewController(client)
	ctx := context.Background()

	require.NoError(t, ctrl.Load(ctx))
	books := ctrl.Snapshot().Books
	require.Len(t, books, 1)
	assert.Equal(t, "9780131103627", books[0].ID)
	assert.False(t, ctrl.InLibrary(books[0].ID))

	before := len(srv.Requests())
	err := ctrl.Remove(ctx, books[0].ID)
	assert.ErrorIs(t, err, api.ErrValidationFailed)
	for _, r := range srv.Requests()[before:] {
		assert.NotEqual(t, http.MethodDelete, r.Method, r.Path)
	}
	assert.Len(t, ctrl.Snapshot().Books, 1)
	assert.Len(t, srv.Library(""), 1)
}

func TestRequestFailedCarriesStatusAndBody(t *testing.T) {
	client, srv := newClient(t)
	srv.Fail("add", http.StatusInternalServerError, "database unavailable")

	_, err := client.AddToLibrary(context.Background(), library.Candidate{Details: library.Details{Title: "x"}}, "", "")
	var rf *api.RequestFailed
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, http.StatusInternalServerError, rf.Status)
	assert.Equal(t, "database unavailable", rf.Body)
	assert.Contains(t, err.Error(), "(500)")
	assert.Equal(t, http.StatusInternalServerError, api.StatusOf(err))
}

func TestNetworkUnavailable(t *testing.T) {
	srv := apitest.NewServer()
	client := api.NewClient(srv.URL, nil, nil)
	srv.Close()

	_, err := client.ListLibrary(context.Background())
	assert.ErrorIs(t, err, api.ErrNetworkUnavailable)
	assert.Equal(t, 0, api.StatusOf(err))
}

func TestCanceledContextIsNotNetworkError(t *testing.T) {
	client, _ := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListLibrary(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, api.ErrNetworkUnavailable)
}

func TestSessionTokenIsAttached(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	ctx := context.Background()

	res, err := client.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", res.User.DisplayName())
	assert.Empty(t, lastRequest(t, srv).Authorization)

	client.Session().Set(res.Token)
	_, err = client.ListLibrary(ctx)
	require.NoError(t, err)
	req := lastRequest(t, srv)
	assert.Equal(t, "Bearer "+res.Token, req.Authorization)
	assert.NotEmpty(t, req.RequestID)
}

func TestLoginAndRegisterFailures(t *testing.T) {
	client, srv := newClient(t)
	srv.AddUser("ada@example.com", "secret", "Ada", "Lovelace")
	ctx := context.Background()

	_, err := client.Login(ctx, "ada@example.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, api.StatusOf(err))

	_, err = client.Register(ctx, api.RegisterRequest{Email: "ada@example.com", Password: "x"})
	assert.Equal(t, http.StatusConflict, api.StatusOf(err))

	_, err = client.Login(ctx, "", "")
	assert.ErrorIs(t, err, api.ErrValidationFailed)

	res, err := client.Register(ctx, api.RegisterRequest{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Password: "cobol"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "grace@example.com", res.User.Email)

	require.NoError(t, client.Logout(ctx))
	assert.Equal(t, 1, srv.Logouts())
}

func TestRecommendMarksOwnedBooks(t *testing.T) {
	client, srv := newClient(t)
	dune := apitest.Book{Title: "Dune", Author: "Frank Herbert", ISBN13: "9780441013593", Genre: "Sci-Fi"}
	hyperion := apitest.Book{Title: "Hyperion", Author: "Dan Simmons", ISBN13: "9780553283686", Genre: "Sci-Fi"}
	foundation := apitest.Book{Title: "Foundation", Author: "Isaac Asimov", ISBN13: "9780553293357", Genre: "Sci-Fi"}
	srv.AddCatalog(dune, hyperion, foundation)
	owned := hyperion
	owned.ID = 9
	srv.SetLibrary("", owned)

	rec, err := client.Recommend(context.Background(), library.RecommendationQuery{
		BookID:  "3",
		ISBN:    dune.ISBN13,
		Details: library.Details{Title: "Dune", Genre: "Sci-Fi"},
	})
	require.NoError(t, err)
	require.Len(t, rec.Similar, 2)
	assert.Equal(t, "Hyperion", rec.Similar[0].Title)
	assert.Equal(t, "9", rec.Similar[0].ServerID)
	assert.Empty(t, rec.Similar[1].ServerID)
	assert.Equal(t, 12, rec.SuggestedMinAge)
	assert.Contains(t, rec.Reasoning, "Dune")
}
