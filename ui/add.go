package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"

	"little_library/lang"
	"little_library/library"
)

type addPhase int

const (
	phaseInput addPhase = iota
	phaseSearching
	phaseResults
	phaseGenre
	phaseAdding
)

// AddModel walks through lookup, pick, genre and add.
type AddModel struct {
	ctrl    *library.Controller
	phase   addPhase
	query   textinput.Model
	genre   textinput.Model
	results list.Model
	spin    spinner.Model
	picked  library.Candidate
	status  string
	width   int
	height  int
}

func NewAddModel(ctrl *library.Controller) AddModel {
	texts := lang.Active().Add

	q := textinput.New()
	q.Prompt = "› "
	q.Placeholder = texts.Placeholder
	q.PromptStyle = PromptStyle.Bold(true)
	q.PlaceholderStyle = InputPlaceholderStyle
	q.TextStyle = InputTextStyle
	q.Cursor.Style = PromptCursorStyle
	q.Cursor.SetMode(cursor.CursorStatic)
	q.CharLimit = 200
	q.Focus()

	g := textinput.New()
	g.Prompt = texts.GenrePrompt
	g.Placeholder = texts.GenreHint
	g.PromptStyle = PromptStyle
	g.PlaceholderStyle = InputPlaceholderStyle
	g.TextStyle = InputTextStyle
	g.Cursor.Style = PromptCursorStyle
	g.CharLimit = 40

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = PromptStyle

	return AddModel{
		ctrl:    ctrl,
		query:   q,
		genre:   g,
		results: newBookList(),
		spin:    s,
	}
}

func (m AddModel) Busy() bool {
	return m.phase == phaseSearching || m.phase == phaseAdding
}

func (m *AddModel) resize(width, height int) {
	m.width = width
	m.height = height
	_, contentW := modalWidths(width)
	m.query.Width = contentW - 4
	m.genre.Width = contentW - len(m.genre.Prompt) - 2
	h := height - 14
	if h < 3 {
		h = 3
	}
	m.results.SetSize(contentW, h)
}

func (m AddModel) Init() tea.Cmd { return textinput.Blink }

func (m AddModel) Update(msg tea.Msg) (AddModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case searchResultMsg:
		if m.phase != phaseSearching || msg.query != strings.TrimSpace(m.query.Value()) {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseInput
			m.status = lang.SearchFailed(msg.err)
			cmd := m.query.Focus()
			return m, cmd
		}
		if len(msg.results) == 0 {
			m.phase = phaseInput
			m.status = lang.Active().Add.NoResults
			cmd := m.query.Focus()
			return m, cmd
		}
		m.results.SetItems(candidateItems(msg.results, m.ctrl.InLibrary))
		m.results.Select(0)
		m.phase = phaseResults
		m.status = lang.SearchFound(len(msg.results))
		return m, nil

	case addedMsg:
		// Success is handled by the app, which closes the modal.
		if msg.err != nil && m.phase == phaseAdding {
			m.phase = phaseGenre
			m.status = lang.AddFailed(msg.err)
			cmd := m.genre.Focus()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m AddModel) updateKeys(msg tea.KeyMsg) (AddModel, tea.Cmd) {
	key := msg.String()
	switch m.phase {
	case phaseInput:
		switch key {
		case "esc":
			return m, closeModal
		case "enter":
			query := strings.TrimSpace(m.query.Value())
			if query == "" {
				return m, nil
			}
			m.phase = phaseSearching
			m.status = ""
			m.query.Blur()
			return m, tea.Batch(m.spin.Tick, lookupCmd(m.ctrl, query))
		}
		var cmd tea.Cmd
		m.query, cmd = m.query.Update(msg)
		return m, cmd

	case phaseResults:
		switch key {
		case "esc":
			m.phase = phaseInput
			m.status = ""
			cmd := m.query.Focus()
			return m, cmd
		case "enter":
			it, ok := m.results.SelectedItem().(candidateItem)
			if !ok {
				return m, nil
			}
			m.picked = it.cand
			m.genre.SetValue(it.cand.Genre)
			m.genre.CursorEnd()
			m.phase = phaseGenre
			m.status = ""
			cmd := m.genre.Focus()
			return m, cmd
		}
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd

	case phaseGenre:
		switch key {
		case "esc":
			m.genre.Blur()
			m.phase = phaseResults
			m.status = ""
			return m, nil
		case "enter":
			m.genre.Blur()
			m.phase = phaseAdding
			m.status = ""
			return m, tea.Batch(m.spin.Tick, addCmd(m.ctrl, m.picked, strings.TrimSpace(m.genre.Value())))
		}
		var cmd tea.Cmd
		m.genre, cmd = m.genre.Update(msg)
		return m, cmd
	}

	// Searching and adding ignore keys until the backend answers.
	return m, nil
}

func (m AddModel) View() string {
	texts := lang.Active()
	dlgW, contentW := modalWidths(m.width)

	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render(texts.Add.Title))
	b.WriteString("\n\n")
	b.WriteString(m.query.View())
	b.WriteString("\n")

	switch m.phase {
	case phaseSearching:
		b.WriteString("\n" + m.spin.View() + " " + texts.Add.Searching + "\n")
	case phaseResults:
		b.WriteString("\n" + m.results.View() + "\n")
	case phaseGenre, phaseAdding:
		b.WriteString("\n")
		b.WriteString(ValueStyle.Bold(true).Render(m.picked.Title))
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render(m.picked.Author))
		b.WriteString("\n\n")
		b.WriteString(m.genre.View())
		b.WriteString("\n")
		if m.phase == phaseAdding {
			b.WriteString("\n" + m.spin.View() + " " + texts.Add.Adding + "\n")
		}
	}

	if m.status != "" {
		style := StatusMutedStyle
		if m.phase == phaseInput || m.phase == phaseGenre {
			style = StatusErrorStyle
		}
		b.WriteString(style.UnsetPadding().PaddingTop(1).Width(contentW).Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Width(contentW).Render(texts.Add.Help))

	box := ModalBoxStyle.Width(dlgW).Render(b.String())
	return gloss.Place(m.width, m.height, gloss.Center, gloss.Center, box)
}
