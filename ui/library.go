package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"

	"little_library/lang"
	"little_library/library"
)

// ---------------- LibraryModel ----------------
type LibraryModel struct {
	ctrl      *library.Controller
	list      list.Model
	search    textinput.Model
	searching bool
	view      library.View
	loading   bool
	status    string
	statusErr bool
	user      string
	width     int
	height    int
}

func NewLibraryModel(ctrl *library.Controller) LibraryModel {
	ti := textinput.New()
	ti.Prompt = lang.Active().Library.SearchPrompt
	ti.Placeholder = lang.Active().Library.SearchHint
	ti.PromptStyle = PromptStyle.Bold(true)
	ti.PlaceholderStyle = InputPlaceholderStyle
	ti.TextStyle = InputTextStyle
	ti.Cursor.Style = PromptCursorStyle
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.CharLimit = 80
	ti.Width = 30

	m := LibraryModel{
		ctrl:   ctrl,
		list:   newBookList(),
		search: ti,
	}
	m.refresh()
	return m
}

// Searching reports whether the search field owns the keyboard.
func (m LibraryModel) Searching() bool { return m.searching }

// refresh pulls a fresh snapshot from the controller, keeping the selection
// on the same book when it is still visible.
func (m *LibraryModel) refresh() {
	selected := ""
	if b, ok := m.SelectedBook(); ok {
		selected = b.ID
	}

	m.view = m.ctrl.Snapshot()
	m.list.SetItems(bookItems(m.view.Filtered))
	for i, b := range m.view.Filtered {
		if b.ID == selected {
			m.list.Select(i)
			return
		}
	}
	if len(m.view.Filtered) > 0 && m.list.Index() >= len(m.view.Filtered) {
		m.list.Select(0)
	}
}

func (m LibraryModel) SelectedBook() (library.Book, bool) {
	if it, ok := m.list.SelectedItem().(bookItem); ok {
		return it.book, true
	}
	return library.Book{}, false
}

func (m *LibraryModel) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *LibraryModel) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *LibraryModel) activeFacetIndex() int {
	for i, f := range m.view.Facets {
		if f.Key == m.view.Facet {
			return i
		}
	}
	return 0
}

func (m *LibraryModel) shiftFacet(delta int) {
	n := len(m.view.Facets)
	if n == 0 {
		return
	}
	idx := (m.activeFacetIndex() + delta + n) % n
	m.ctrl.SetFacet(m.view.Facets[idx].Key)
	m.list.Select(0)
	m.refresh()
}

func (m *LibraryModel) resize(width, height int) {
	m.width = width
	m.height = height
	availHeight := height - 11
	if availHeight < 3 {
		availHeight = 3
	}
	m.list.SetSize(listWidth(width), availHeight)
}

func (m *LibraryModel) applyLanguage() {
	texts := lang.Active()
	m.search.Prompt = texts.Library.SearchPrompt
	m.search.Placeholder = texts.Library.SearchHint
}

// ---------------- Update ----------------
func (m LibraryModel) Init() tea.Cmd { return nil }

func (m LibraryModel) Update(msg tea.Msg) (LibraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case libraryLoadedMsg:
		m.loading = false
		m.refresh()
		if msg.err != nil {
			m.setStatus(lang.LoadFailed(msg.err), true)
		}
		return m, nil

	case controllerEventMsg:
		m.refresh()
		if msg.event.Kind == library.EventError {
			m.setStatus(lang.LoadFailed(msg.event.Err), true)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "/":
			m.searching = true
			m.clearStatus()
			cmd := m.search.Focus()
			return m, cmd
		case "left", "h":
			m.shiftFacet(-1)
			return m, nil
		case "right", "l":
			m.shiftFacet(1)
			return m, nil
		case "r":
			m.loading = true
			m.clearStatus()
			return m, loadLibraryCmd(m.ctrl)
		case "esc":
			if m.search.Value() != "" {
				m.search.SetValue("")
				m.ctrl.SetQuery("")
				m.refresh()
			}
			m.clearStatus()
			return m, nil
		}
	}

	// Default: delegate to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m LibraryModel) updateSearch(msg tea.KeyMsg) (LibraryModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "down":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.SetQuery("")
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ctrl.SetQuery(m.search.Value())
	m.refresh()
	return m, cmd
}

// ---------------- View ----------------
func (m LibraryModel) View() string {
	texts := lang.Active()

	header := HeaderStyle.Width(m.width).Render(texts.Library.Title)
	subtitle := texts.Library.Subtitle
	if m.user != "" {
		subtitle = lang.SignedInAs(m.user)
	}
	header += "\n" + SubtitleStyle.Width(m.width).Render(subtitle)

	var renderedTabs []string
	active := m.activeFacetIndex()
	for i, f := range m.view.Facets {
		if i == active {
			renderedTabs = append(renderedTabs, ActiveTabStyle.Render(f.Label))
		} else {
			renderedTabs = append(renderedTabs, InactiveTabStyle.Render(f.Label))
		}
	}
	tabsRow := TabsRow.Width(m.width).Render(gloss.JoinHorizontal(gloss.Top, renderedTabs...))

	maxUnderline := texts.Layout.UnderlineLength
	if maxUnderline <= 0 {
		maxUnderline = 48
	}
	lineWidth := m.width
	if lineWidth > maxUnderline {
		lineWidth = maxUnderline
	}
	underlineRow := UnderlineRow.Width(m.width).Render(strings.Repeat("─", lineWidth))

	result := header + "\n" + tabsRow + "\n" + underlineRow
	if m.searching || m.search.Value() != "" {
		result += "\n" + List.Width(m.width).Render(m.search.View())
	}

	switch {
	case m.status != "" && m.statusErr:
		result += "\n" + StatusErrorStyle.Width(m.width).Render(m.status)
	case m.status != "":
		result += "\n" + StatusStyle.Width(m.width).Render(m.status)
	case m.loading:
		result += "\n" + StatusStyle.Width(m.width).Render(texts.Library.Loading)
	}

	switch {
	case len(m.view.Books) == 0 && !m.loading:
		result += "\n" + StatusMutedStyle.Width(m.width).Render(texts.Library.Empty)
	case len(m.view.Filtered) == 0 && !m.loading:
		result += "\n" + StatusMutedStyle.Width(m.width).Render(texts.Library.NoMatches)
	default:
		listBlock := ListStyle.Width(listWidth(m.width)).Render(m.list.View())
		result += "\n" + List.Width(m.width).Render(listBlock)
		result += "\n" + StatusMutedStyle.Width(m.width).Render(lang.BookCount(len(m.view.Filtered)))
	}

	result += "\n" + HelpStyle.Width(m.width).Align(gloss.Center).Render(texts.Library.Help)
	return result
}
