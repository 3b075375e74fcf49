package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"little_library/lang"
	"little_library/library"
)

// bookItem is a library book in a list.
type bookItem struct {
	book library.Book
}

func (b bookItem) Title() string { return b.book.Title }
func (b bookItem) Description() string {
	return b.book.Author + " | " + library.Label(b.book.Shelf())
}
func (b bookItem) FilterValue() string { return b.book.Title + " " + b.book.Author }

// candidateItem is a lookup or recommendation result.
type candidateItem struct {
	cand  library.Candidate
	owned bool
}

func (c candidateItem) Title() string {
	if c.owned {
		return "✓ " + c.cand.Title
	}
	return c.cand.Title
}

func (c candidateItem) Description() string {
	parts := []string{c.cand.Author}
	if c.cand.PublicationYear > 0 {
		parts = append(parts, strconv.Itoa(c.cand.PublicationYear))
	}
	if isbn := c.cand.BestISBN(); isbn != "" {
		parts = append(parts, isbn)
	}
	return strings.Join(parts, " | ")
}

func (c candidateItem) FilterValue() string { return c.cand.Title + " " + c.cand.Author }

func bookItems(books []library.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{book: b}
	}
	return items
}

func candidateItems(cands []library.Candidate, owned func(id string) bool) []list.Item {
	items := make([]list.Item, len(cands))
	for i, c := range cands {
		items[i] = candidateItem{cand: c, owned: owned(c.ServerID)}
	}
	return items
}

// ---------------- BookDelegate ----------------
type BookDelegate struct {
	list.DefaultDelegate
}

func (d *BookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	var title, desc string
	switch v := item.(type) {
	case bookItem:
		title = v.Title()
		desc = runewidth.Truncate(v.Description(), m.Width()-10, "…")
	case candidateItem:
		title = v.Title()
		desc = runewidth.Truncate(v.Description(), m.Width()-10, "…")
	default:
		title = lang.Active().Common.UnknownItem
		desc = ""
	}
	title = runewidth.Truncate(title, m.Width()-6, "…")
	if index == m.Index() {
		title = SelectedTitleStyle.Render(title)
		desc = SelectedDescStyle.Render(desc)
	} else {
		title = NormalTitleStyle.Render(title)
		desc = NormalDescStyle.Render(desc)
	}
	fmt.Fprintf(w, "%s\n%s", title, desc)
}

func (d *BookDelegate) Height() int  { return 2 }
func (d *BookDelegate) Spacing() int { return 1 }
func (d *BookDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// ---------------- List styling ----------------
func listSettings(l *list.Model) {
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
}

func newBookList() list.Model {
	l := list.New(nil, &BookDelegate{}, 0, 0)
	listSettings(&l)
	return l
}
