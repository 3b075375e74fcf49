package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	gloss "github.com/charmbracelet/lipgloss"

	"little_library/api"
	"little_library/auth"
	"little_library/lang"
)

const (
	fieldFirstName = iota
	fieldLastName
	fieldEmail
	fieldPassword
)

// LoginModel is the sign in and register form.
type LoginModel struct {
	holder   *auth.Holder
	inputs   []textinput.Model
	focus    int
	register bool
	busy     bool
	status   string
	width    int
	height   int
}

func newField(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.PromptStyle = PromptStyle
	ti.PlaceholderStyle = InputPlaceholderStyle
	ti.TextStyle = InputTextStyle
	ti.Cursor.Style = PromptCursorStyle
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.CharLimit = 120
	ti.Width = 32
	return ti
}

func NewLoginModel(holder *auth.Holder) LoginModel {
	texts := lang.Active().Login
	inputs := []textinput.Model{
		newField(texts.FirstName),
		newField(texts.LastName),
		newField(texts.Email),
		newField(texts.Password),
	}
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	m := LoginModel{holder: holder, inputs: inputs, focus: fieldEmail}
	m.inputs[m.focus].Focus()
	return m
}

// visible lists the field indexes shown in the current mode.
func (m LoginModel) visible() []int {
	if m.register {
		return []int{fieldFirstName, fieldLastName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *LoginModel) setFocus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focus = field
}

func (m *LoginModel) moveFocus(delta int) {
	fields := m.visible()
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
		}
	}
	pos = (pos + delta + len(fields)) % len(fields)
	m.setFocus(fields[pos])
}

func (m *LoginModel) toggleMode() {
	m.register = !m.register
	m.status = ""
	m.setFocus(m.visible()[0])
}

func (m *LoginModel) applyLanguage() {
	texts := lang.Active().Login
	m.inputs[fieldFirstName].Placeholder = texts.FirstName
	m.inputs[fieldLastName].Placeholder = texts.LastName
	m.inputs[fieldEmail].Placeholder = texts.Email
	m.inputs[fieldPassword].Placeholder = texts.Password
}

// reset clears the form after a successful sign in or a sign out.
func (m *LoginModel) reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.busy = false
	m.status = ""
	m.register = false
	m.setFocus(fieldEmail)
}

func (m LoginModel) value(field int) string {
	return strings.TrimSpace(m.inputs[field].Value())
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	email := m.value(fieldEmail)
	password := m.inputs[fieldPassword].Value()
	if email == "" || password == "" {
		m.status = lang.Active().Login.MissingFields
		return m, nil
	}

	m.busy = true
	m.status = ""
	if m.register {
		return m, registerCmd(m.holder, api.RegisterRequest{
			FirstName: m.value(fieldFirstName),
			LastName:  m.value(fieldLastName),
			Email:     email,
			Password:  password,
		})
	}
	return m, loginCmd(m.holder, email, password)
}

func (m LoginModel) Init() tea.Cmd { return textinput.Blink }

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authMsg:
		m.busy = false
		if msg.ok {
			m.reset()
			return m, nil
		}
		err := msg.err
		if err == nil {
			err = errors.New("unknown error")
		}
		if msg.register {
			m.status = lang.RegisterFailed(err)
		} else {
			m.status = lang.SignInFailed(err)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, tea.Quit
		case "ctrl+r":
			if !m.busy {
				m.toggleMode()
			}
			return m, nil
		case "tab", "down":
			m.moveFocus(1)
			return m, nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, nil
		case "enter":
			if m.focus != fieldPassword {
				m.moveFocus(1)
				return m, nil
			}
			return m.submit()
		}
	}

	if m.busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m LoginModel) View() string {
	texts := lang.Active()
	dlgW, contentW := modalWidths(m.width)

	title := texts.Login.SignInTitle
	if m.register {
		title = texts.Login.RegisterTitle
	}

	labels := map[int]string{
		fieldFirstName: texts.Login.FirstName,
		fieldLastName:  texts.Login.LastName,
		fieldEmail:     texts.Login.Email,
		fieldPassword:  texts.Login.Password,
	}

	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render(title))
	b.WriteString("\n\n")
	for _, f := range m.visible() {
		in := m.inputs[f]
		in.Width = contentW - 4
		b.WriteString(LabelStyle.Render(labels[f]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.busy && m.register:
		b.WriteString(StatusStyle.UnsetPadding().Render(texts.Login.Registering))
	case m.busy:
		b.WriteString(StatusStyle.UnsetPadding().Render(texts.Login.SigningIn))
	case m.status != "":
		b.WriteString(StatusErrorStyle.UnsetPadding().Width(contentW).Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Width(contentW).Render(texts.Login.Help))

	header := HeaderStyle.Width(m.width).Render(texts.Library.Title)
	box := ModalBoxStyle.Width(dlgW).Render(b.String())
	body := gloss.Place(m.width, m.height-3, gloss.Center, gloss.Center, box)
	return header + "\n" + body
}
