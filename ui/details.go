package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"little_library/lang"
	"little_library/library"
)

// DetailsModel shows one library book with its recommendations.
type DetailsModel struct {
	ctrl     *library.Controller
	book     library.Book
	rec      *library.Recommendation
	loading  bool
	removing bool
	status   string
	offset   int
	width    int
	height   int
}

func NewDetailsModel(ctrl *library.Controller, book library.Book, width, height int) DetailsModel {
	return DetailsModel{ctrl: ctrl, book: book, width: width, height: height}
}

func (m DetailsModel) Book() library.Book { return m.book }

func (m DetailsModel) Busy() bool { return m.removing }

func (m DetailsModel) Init() tea.Cmd { return nil }

func (m DetailsModel) Update(msg tea.Msg) (DetailsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case recommendMsg:
		if msg.bookID != m.book.ID {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.status = lang.RecommendFailed(msg.err)
			return m, nil
		}
		rec := msg.rec
		m.rec = &rec
		return m, nil

	case removedMsg:
		m.removing = false
		if msg.err != nil {
			m.status = lang.RemoveFailed(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.removing {
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			return m, closeModal
		case "R":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = ""
			return m, recommendCmd(m.ctrl, m.book)
		case "x":
			m.removing = true
			m.status = ""
			return m, removeCmd(m.ctrl, m.book)
		case "down", "j":
			if m.offset < m.maxOffset() {
				m.offset++
			}
		case "up", "k":
			if m.offset > 0 {
				m.offset--
			}
		}
	}
	return m, nil
}

func field(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value)
}

// lines renders the scrollable body.
func (m DetailsModel) lines(width int) []string {
	texts := lang.Active().Details
	b := m.book

	var out []string
	out = append(out, ModalTitleStyle.Render(b.Title))
	out = append(out, field(texts.Author, b.Author))
	if b.Genre != "" {
		out = append(out, field(texts.Genre, b.Genre))
	}
	out = append(out, field(texts.Shelf, library.Label(b.Shelf())))
	if b.AgeShelf != "" {
		out = append(out, field(texts.AgeShelf, b.AgeShelf))
	}
	if b.Publisher != "" {
		out = append(out, field(texts.Publisher, b.Publisher))
	}
	if b.PublicationYear > 0 {
		out = append(out, field(texts.Year, strconv.Itoa(b.PublicationYear)))
	}
	if b.PageCount > 0 {
		out = append(out, field(texts.Pages, strconv.Itoa(b.PageCount)))
	}
	if isbn := b.BestISBN(); isbn != "" {
		out = append(out, field(texts.ISBN, isbn))
	}
	out = append(out, "")

	desc := strings.TrimSpace(b.Description)
	if desc == "" {
		out = append(out, LabelStyle.Render(texts.NoDescription))
	} else {
		for _, line := range strings.Split(wordwrap.String(desc, width), "\n") {
			out = append(out, ValueStyle.Render(line))
		}
	}

	switch {
	case m.loading:
		out = append(out, "", StatusMutedStyle.UnsetPadding().Render(texts.Loading))
	case m.rec != nil:
		out = append(out, "")
		out = append(out, m.recommendationLines(width)...)
	}
	return out
}

func (m DetailsModel) recommendationLines(width int) []string {
	texts := lang.Active().Details
	rec := m.rec

	var out []string
	if rec.AgeRecommendation != "" {
		out = append(out, ValueStyle.Render(lang.AgeRecommendation(rec.AgeRecommendation)))
	}
	if rec.ReadingLevel != "" {
		out = append(out, field(texts.ReadingLevel, rec.ReadingLevel))
	}
	if len(rec.Themes) > 0 {
		out = append(out, field(texts.Themes, strings.Join(rec.Themes, ", ")))
	}
	if r := strings.TrimSpace(rec.Reasoning); r != "" {
		for _, line := range strings.Split(wordwrap.String(r, width), "\n") {
			out = append(out, LabelStyle.Render(line))
		}
	}

	out = append(out, "", ModalTitleStyle.Render(texts.Recommendations))
	if len(rec.Similar) == 0 {
		out = append(out, LabelStyle.Render(texts.NoRecommendation))
		return out
	}
	for _, c := range rec.Similar {
		line := "• " + c.Title
		if c.Author != "" {
			line += " | " + c.Author
		}
		if m.ctrl.InLibrary(c.ServerID) {
			line = OwnedMarkStyle.Render("✓ ") + ValueStyle.Render(line) + " " + OwnedMarkStyle.Render(texts.InLibrary)
		} else {
			line = "  " + ValueStyle.Render(line)
		}
		out = append(out, line)
	}
	return out
}

func (m DetailsModel) visibleLines() int {
	return max(m.height-10, 5)
}

// maxOffset is the last scroll position that still fills the window.
func (m DetailsModel) maxOffset() int {
	_, contentW := modalWidths(m.width)
	return max(len(m.lines(contentW))-m.visibleLines(), 0)
}

func (m DetailsModel) View() string {
	texts := lang.Active()
	dlgW, contentW := modalWidths(m.width)

	lines := m.lines(contentW)
	visible := m.visibleLines()
	offset := min(m.offset, max(len(lines)-visible, 0))
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}

	body := strings.Join(lines[offset:end], "\n")
	switch {
	case m.removing:
		body += "\n\n" + DangerStyle.Render(texts.Details.Removing)
	case m.status != "":
		body += "\n\n" + StatusErrorStyle.UnsetPadding().Width(contentW).Render(m.status)
	}
	body += "\n" + HelpStyle.Width(contentW).Render(texts.Details.Help)

	box := ModalBoxStyle.Width(dlgW).Render(body)
	return gloss.Place(m.width, m.height, gloss.Center, gloss.Center, box)
}
