package library

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"little_library/logger"
)

// Backend is the remote side of the library. *api.Client implements it.
type Backend interface {
	ListLibrary(ctx context.Context) ([]Book, error)
	Lookup(ctx context.Context, query string) ([]Candidate, error)
	AddToLibrary(ctx context.Context, c Candidate, genreShelf, ageShelf string) (Book, error)
	RemoveFromLibrary(ctx context.Context, id string) error
	Recommend(ctx context.Context, q RecommendationQuery) (Recommendation, error)
}

type EventKind int

const (
	EventReloaded EventKind = iota
	EventError
)

// Event reports the outcome of background work started by the controller.
type Event struct {
	Kind EventKind
	Err  error
}

type Option func(*Controller)

// WithNotifier registers a callback for background events.
// It is called from the goroutine that finished the work.
func WithNotifier(fn func(Event)) Option {
	return func(c *Controller) { c.notify = fn }
}

// View is a read-only snapshot of the controller state.
type View struct {
	Books    []Book
	Facets   []Facet
	Query    string
	Facet    string
	Filtered []Book
	Loaded   bool
}

// Controller owns the local view of the library.
//
// Every reload and every local mutation takes a sequence number. A reload
// result is applied only when no newer reload or mutation has been applied
// since it started.
type Controller struct {
	backend Backend
	notify  func(Event)

	mu      sync.Mutex
	books   []Book
	query   string
	facet   string
	loaded  bool
	seq     uint64
	applied uint64

	bg sync.WaitGroup
}

func NewController(backend Backend, opts ...Option) *Controller {
	c := &Controller{backend: backend, facet: FacetAll}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) next() uint64 {
	c.seq++
	return c.seq
}

// replace applies a reload result unless it is stale.
func (c *Controller) replace(seq uint64, books []Book) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return false
	}
	c.applied = seq
	c.books = books
	c.loaded = true
	c.keepFacet()
	return true
}

// keepFacet resets the active facet when it is no longer derivable.
func (c *Controller) keepFacet() {
	if c.facet == FacetAll {
		return
	}
	for _, f := range Facets(c.books) {
		if f.Key == c.facet {
			return
		}
	}
	c.facet = FacetAll
}

// Load fetches the whole library and replaces local state.
// On failure the list is cleared rather than kept stale.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	seq := c.next()
	c.mu.Unlock()

	books, err := c.backend.ListLibrary(ctx)
	if err != nil {
		if c.replace(seq, []Book{}) {
			logger.Warn("library load failed, cleared", "error", err)
		}
		return fmt.Errorf("load library: %w", err)
	}
	if !c.replace(seq, books) {
		logger.Debug("discarded stale library load", "seq", seq)
	}
	return nil
}

// reload runs Load in the background and reports through the notifier.
func (c *Controller) reload(ctx context.Context) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		err := c.Load(ctx)
		if c.notify == nil {
			return
		}
		if err != nil {
			c.notify(Event{Kind: EventError, Err: err})
			return
		}
		c.notify(Event{Kind: EventReloaded})
	}()
}

// Wait blocks until background reloads have finished.
func (c *Controller) Wait() {
	c.bg.Wait()
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]Book, len(c.books))
	copy(books, c.books)
	return View{
		Books:    books,
		Facets:   Facets(books),
		Query:    c.query,
		Facet:    c.facet,
		Filtered: Filter(books, c.query, c.facet),
		Loaded:   c.loaded,
	}
}

func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Controller) SetFacet(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(key) == "" || Canonicalize(key) == FacetAll {
		c.facet = FacetAll
		return
	}
	c.facet = Canonicalize(key)
	c.keepFacet()
}

// Search looks up candidates. Library state is not touched.
func (c *Controller) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: empty query: %w", ErrValidationFailed)
	}
	return c.backend.Lookup(ctx, query)
}

// Add promotes a candidate into the library. On success the returned book is
// inserted locally and a reconciling reload runs in the background.
// On failure local state is unchanged.
func (c *Controller) Add(ctx context.Context, cand Candidate, genre string) (Book, error) {
	return c.AddToShelves(ctx, cand, genre, "")
}

// AddToShelves is Add with an explicit age shelf.
func (c *Controller) AddToShelves(ctx context.Context, cand Candidate, genre, ageShelf string) (Book, error) {
	book, err := c.backend.AddToLibrary(ctx, cand, genre, ageShelf)
	if err != nil {
		return Book{}, fmt.Errorf("add %q: %w", cand.Title, err)
	}

	if book.ID != "" {
		c.mu.Lock()
		c.applied = c.next()
		c.books = upsert(c.books, book)
		c.loaded = true
		c.mu.Unlock()
	}

	c.reload(context.WithoutCancel(ctx))
	return book, nil
}

func upsert(books []Book, b Book) []Book {
	out := make([]Book, 0, len(books)+1)
	replaced := false
	for _, existing := range books {
		if existing.ID == b.ID {
			if !replaced {
				out = append(out, b)
				replaced = true
			}
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, b)
	}
	return out
}

// Remove drops a book locally and then on the server. A failed remote call
// is returned without restoring the book; callers reload to recover.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if n, err := strconv.ParseInt(id, 10, 64); err != nil || n <= 0 {
		return fmt.Errorf("remove %q: numeric id required: %w", id, ErrValidationFailed)
	}

	c.mu.Lock()
	if c.placeholder(id) {
		c.mu.Unlock()
		return fmt.Errorf("remove %q: book has no server id yet: %w", id, ErrValidationFailed)
	}
	c.applied = c.next()
	kept := make([]Book, 0, len(c.books))
	for _, b := range c.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	c.books = kept
	c.keepFacet()
	c.mu.Unlock()

	if err := c.backend.RemoveFromLibrary(ctx, id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// placeholder reports whether id only keys a listed book that the server
// returned without an id. Callers hold c.mu.
func (c *Controller) placeholder(id string) bool {
	found := false
	for _, b := range c.books {
		if b.ID != id {
			continue
		}
		if !b.Placeholder {
			return false
		}
		found = true
	}
	return found
}

// InLibrary reports whether the current list holds a book with this id.
func (c *Controller) InLibrary(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return InLibrary(c.books, id)
}

// Recommend fetches recommendations for a library book.
func (c *Controller) Recommend(ctx context.Context, b Book) (Recommendation, error) {
	rec, err := c.backend.Recommend(ctx, QueryFor(b))
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend %q: %w", b.Title, err)
	}
	return rec, nil
}
