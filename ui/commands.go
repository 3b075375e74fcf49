package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"little_library/api"
	"little_library/auth"
	"little_library/library"
)

// ---------------- Messages ----------------
type errMsg struct{ error }

type libraryLoadedMsg struct{ err error }

type controllerEventMsg struct{ event library.Event }

type searchResultMsg struct {
	query   string
	results []library.Candidate
	err     error
}

type addedMsg struct {
	cand library.Candidate
	book library.Book
	err  error
}

type removedMsg struct {
	book library.Book
	err  error
}

type recommendMsg struct {
	bookID string
	rec    library.Recommendation
	err    error
}

type authMsg struct {
	register bool
	ok       bool
	err      error
}

type loggedOutMsg struct{}

type closeModalMsg struct{}

type languageChangedMsg struct{}

// ---------------- Commands ----------------
func loadLibraryCmd(ctrl *library.Controller) tea.Cmd {
	return func() tea.Msg {
		return libraryLoadedMsg{err: ctrl.Load(context.Background())}
	}
}

func lookupCmd(ctrl *library.Controller, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := ctrl.Search(context.Background(), query)
		return searchResultMsg{query: query, results: results, err: err}
	}
}

func addCmd(ctrl *library.Controller, cand library.Candidate, genre string) tea.Cmd {
	return func() tea.Msg {
		book, err := ctrl.Add(context.Background(), cand, genre)
		return addedMsg{cand: cand, book: book, err: err}
	}
}

func removeCmd(ctrl *library.Controller, book library.Book) tea.Cmd {
	return func() tea.Msg {
		return removedMsg{book: book, err: ctrl.Remove(context.Background(), book.ID)}
	}
}

func recommendCmd(ctrl *library.Controller, book library.Book) tea.Cmd {
	return func() tea.Msg {
		rec, err := ctrl.Recommend(context.Background(), book)
		return recommendMsg{bookID: book.ID, rec: rec, err: err}
	}
}

func loginCmd(holder *auth.Holder, email, password string) tea.Cmd {
	return func() tea.Msg {
		ok := holder.Login(context.Background(), email, password)
		return authMsg{ok: ok, err: holder.LastError()}
	}
}

func registerCmd(holder *auth.Holder, req api.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		ok := holder.Register(context.Background(), req)
		return authMsg{register: true, ok: ok, err: holder.LastError()}
	}
}

func logoutCmd(holder *auth.Holder) tea.Cmd {
	return func() tea.Msg {
		holder.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func closeModal() tea.Msg { return closeModalMsg{} }

// Bridge forwards controller events into a running program.
type Bridge struct {
	mu sync.Mutex
	p  *tea.Program
}

// Notify is meant for library.WithNotifier. Events before the program
// starts are dropped; the first screen loads the library anyway.
func (b *Bridge) Notify(e library.Event) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p != nil {
		p.Send(controllerEventMsg{event: e})
	}
}

func (b *Bridge) attach(p *tea.Program) {
	b.mu.Lock()
	b.p = p
	b.mu.Unlock()
}
