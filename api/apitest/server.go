// Package apitest runs an in-memory library backend for tests.
package apitest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

// Book is the wire shape served by the fake backend.
type Book struct {
	ID              int64  `json:"id,omitempty"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn,omitempty"`
	ISBN10          string `json:"isbn10,omitempty"`
	ISBN13          string `json:"isbn13,omitempty"`
	Description     string `json:"description,omitempty"`
	Genre           string `json:"genre,omitempty"`
	CoverImageURL   string `json:"coverImageUrl,omitempty"`
	Publisher       string `json:"publisher,omitempty"`
	PublicationYear int    `json:"publicationYear,omitempty"`
	PageCount       int    `json:"pageCount,omitempty"`
	GenreShelf      string `json:"genreShelf,omitempty"`
	AgeShelf        string `json:"ageShelf,omitempty"`
	DateAdded       string `json:"dateAdded,omitempty"`
}

func (b Book) isbn() string {
	for _, s := range []string{b.ISBN13, b.ISBN, b.ISBN10} {
		if s = digitsOnly(s); s != "" {
			return s
		}
	}
	return ""
}

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type account struct {
	User
	hash []byte
}

// Request is one request as seen by the server.
type Request struct {
	Route         string
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type failure struct {
	status int
	body   string
}

// Server is a fake of the library REST API. Book routes work without a
// token (anonymous library); a token that is present must be valid.
type Server struct {
	*httptest.Server

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	mu        sync.Mutex
	secret    []byte
	accounts  map[string]*account
	nextUser  int64
	nextBook  int64
	catalog   []Book
	libraries map[int64][]Book
	fail      map[string]failure
	delay     map[string]chan struct{}
	requests  []Request
	logouts   int
}

func NewServer() *Server {
	s := &Server{
		TokenTTL:  time.Hour,
		secret:    []byte("apitest-secret"),
		accounts:  make(map[string]*account),
		libraries: make(map[int64][]Book),
		fail:      make(map[string]failure),
		delay:     make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/books", s.handleList).Methods("GET").Name("list")
	r.HandleFunc("/api/books/lookup", s.handleLookup).Methods("GET").Name("lookup")
	r.HandleFunc("/api/books/add-to-library", s.handleAdd).Methods("POST").Name("add")
	r.HandleFunc("/api/books/{id:[0-9]+}/remove-from-library", s.handleRemove).Methods("DELETE").Name("remove")
	r.HandleFunc("/api/books/recommendations/query", s.handleRecommend).Methods("POST").Name("recommend")
	r.HandleFunc("/auth/login", s.handleLogin).Methods("POST").Name("login")
	r.HandleFunc("/auth/register", s.handleRegister).Methods("POST").Name("register")
	r.HandleFunc("/auth/logout", s.handleLogout).Methods("POST").Name("logout")
	return r
}

// ---------------- Test knobs ----------------

// AddCatalog makes books findable through lookup.
func (s *Server) AddCatalog(books ...Book) {
	s.mu.Lock()
	s.catalog = append(s.catalog, books...)
	s.mu.Unlock()
}

// SetNextID sets the id given to the next added book.
func (s *Server) SetNextID(id int64) {
	s.mu.Lock()
	s.nextBook = id - 1
	s.mu.Unlock()
}

// SetLibrary replaces the anonymous library (or a user's when email is set).
func (s *Server) SetLibrary(email string, books ...Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := int64(0)
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		uid = a.ID
	}
	s.libraries[uid] = append([]Book(nil), books...)
}

// Library returns a copy of the anonymous library (or a user's).
func (s *Server) Library(email string) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := int64(0)
	if a, ok := s.accounts[strings.ToLower(email)]; ok {
		uid = a.ID
	}
	return append([]Book(nil), s.libraries[uid]...)
}

// Fail makes every request to the named route answer status and body until
// Recover is called. Route names: list lookup add remove recommend login
// register logout.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	s.fail[route] = failure{status: status, body: body}
	s.mu.Unlock()
}

func (s *Server) Recover(route string) {
	s.mu.Lock()
	delete(s.fail, route)
	s.mu.Unlock()
}

// Hold blocks requests to route until the returned func is called.
func (s *Server) Hold(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.delay[route] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.delay, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns the requests served so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) Logouts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logouts
}

// AddUser registers an account directly.
func (s *Server) AddUser(email, password, first, last string) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, _ := s.createAccount(email, password, first, last)
	return u
}

// Token issues a token for email with the given lifetime.
func (s *Server) Token(email string, ttl time.Duration) string {
	tok, _ := s.issue(strings.ToLower(email), ttl)
	return tok
}

// ---------------- Middleware ----------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:         name,
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		f, failing := s.fail[name]
		hold := s.delay[name]
		s.mu.Unlock()

		if hold != nil {
			<-hold
		}
		if failing {
			http.Error(w, f.body, f.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ---------------- Helpers ----------------

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, msg string) {
	respondWithJSON(w, status, map[string]string{"error": msg})
}

var nonDigit = regexp.MustCompile(`[^0-9Xx]`)

func digitsOnly(s string) string {
	return strings.ToUpper(nonDigit.ReplaceAllString(s, ""))
}

func (s *Server) issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

var errBadToken = errors.New("invalid token")

// caller resolves the library owner. Missing token means anonymous.
// Must be called with s.mu held.
func (s *Server) caller(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return 0, errBadToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, errBadToken
	}
	a, ok := s.accounts[claims.Subject]
	if !ok {
		return 0, errBadToken
	}
	return a.ID, nil
}

// createAccount must be called with s.mu held.
func (s *Server) createAccount(email, password, first, last string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, exists := s.accounts[email]; exists {
		return User{}, fmt.Errorf("email %s already registered", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return User{}, err
	}
	s.nextUser++
	a := &account{
		User: User{ID: s.nextUser, Email: email, FirstName: first, LastName: last},
		hash: hash,
	}
	s.accounts[email] = a
	return a.User, nil
}

// ---------------- Book handlers ----------------

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	uid, err := s.caller(r)
	books := append([]Book{}, s.libraries[uid]...)
	s.mu.Unlock()
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, books)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	isbn := digitsOnly(r.URL.Query().Get("isbn"))
	title := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("title")))
	if isbn == "" && title == "" {
		respondWithError(w, http.StatusBadRequest, "isbn or title required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	found := []Book{}
	for _, b := range s.catalog {
		switch {
		case isbn != "" && (digitsOnly(b.ISBN) == isbn || digitsOnly(b.ISBN10) == isbn || digitsOnly(b.ISBN13) == isbn):
		case isbn == "" && strings.Contains(strings.ToLower(b.Title), title):
		default:
			continue
		}
		b.ID = 0
		found = append(found, b)
	}
	respondWithJSON(w, http.StatusOK, found)
}

type addRequest struct {
	Book       Book   `json:"book"`
	GenreShelf string `json:"genreShelf"`
	AgeShelf   string `json:"ageShelf"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Book.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "book title required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := s.caller(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	lib := s.libraries[uid]
	if isbn := req.Book.isbn(); isbn != "" {
		for _, b := range lib {
			if b.isbn() == isbn {
				respondWithJSON(w, http.StatusOK, b)
				return
			}
		}
	}

	s.nextBook++
	b := req.Book
	b.ID = s.nextBook
	b.GenreShelf = req.GenreShelf
	b.AgeShelf = req.AgeShelf
	b.DateAdded = time.Now().UTC().Format("2006-01-02T15:04:05")
	s.libraries[uid] = append(lib, b)
	respondWithJSON(w, http.StatusOK, b)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := s.caller(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	kept := make([]Book, 0, len(s.libraries[uid]))
	for _, b := range s.libraries[uid] {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.libraries[uid] = kept
	w.WriteHeader(http.StatusNoContent)
}

type recommendationRequest struct {
	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Genre      string `json:"genre"`
	GenreShelf string `json:"genreShelf"`
}

type recommendationResponse struct {
	AgeRecommendation string   `json:"ageRecommendation"`
	SuggestedMinAge   int      `json:"suggestedMinAge"`
	SuggestedMaxAge   int      `json:"suggestedMaxAge"`
	Reasoning         string   `json:"reasoning"`
	SimilarBooks      []Book   `json:"similarBooks"`
	Themes            []string `json:"themes"`
	ReadingLevel      string   `json:"readingLevel"`
}

// handleRecommend suggests catalog books sharing the query's genre. Books
// already in the caller's library carry their library id.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	genre := strings.ToLower(strings.TrimSpace(req.Genre))
	if genre == "" {
		genre = strings.ToLower(strings.TrimSpace(req.GenreShelf))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	uid, err := s.caller(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	owned := make(map[string]int64)
	for _, b := range s.libraries[uid] {
		if isbn := b.isbn(); isbn != "" {
			owned[isbn] = b.ID
		}
	}

	similar := []Book{}
	self := digitsOnly(req.ISBN)
	for _, b := range s.catalog {
		if strings.ToLower(b.Genre) != genre || (self != "" && b.isbn() == self) {
			continue
		}
		b.ID = 0
		if isbn := b.isbn(); isbn != "" {
			b.ID = owned[isbn]
		}
		similar = append(similar, b)
	}
	respondWithJSON(w, http.StatusOK, recommendationResponse{
		AgeRecommendation: "Ages 12+",
		SuggestedMinAge:   12,
		SuggestedMaxAge:   99,
		Reasoning:         fmt.Sprintf("Readers of %s often enjoy other %s titles.", req.Title, genre),
		SimilarBooks:      similar,
		Themes:            []string{genre},
		ReadingLevel:      "Intermediate",
	})
}

// ---------------- Auth handlers ----------------

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	s.respondWithToken(w, http.StatusOK, a.User)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	u, err := s.createAccount(req.Email, req.Password, req.FirstName, req.LastName)
	s.mu.Unlock()
	if err != nil {
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}
	s.respondWithToken(w, http.StatusCreated, u)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, u User) {
	tok, err := s.issue(u.Email, s.TokenTTL)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, status, authResponse{Token: tok, User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logouts++
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
