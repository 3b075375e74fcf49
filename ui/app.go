package ui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"little_library/auth"
	"little_library/lang"
	"little_library/library"
	"little_library/logger"
	"little_library/utils"
)

type AppState int

const (
	StateLogin AppState = iota
	StateLibrary
	StateAdd
	StateDetails
)

// Deps is everything the interactive client needs.
type Deps struct {
	Controller *library.Controller
	Auth       *auth.Holder
	ConfigPath string
	Bridge     *Bridge
}

type AppModel struct {
	deps      Deps
	state     AppState
	loginUI   LoginModel
	libraryUI LibraryModel
	addUI     AddModel
	detailsUI DetailsModel
	width     int
	height    int
}

func NewAppModel(deps Deps) AppModel {
	m := AppModel{
		deps:      deps,
		state:     StateLogin,
		loginUI:   NewLoginModel(deps.Auth),
		libraryUI: NewLibraryModel(deps.Controller),
		addUI:     NewAddModel(deps.Controller),
	}
	if deps.Auth.Active() {
		m.state = StateLibrary
		m.libraryUI.user = m.displayName()
		m.libraryUI.loading = true
	}
	return m
}

func (m AppModel) displayName() string {
	if u, ok := m.deps.Auth.User(); ok {
		return u.DisplayName()
	}
	return ""
}

func (m AppModel) State() AppState { return m.state }

func (m AppModel) Init() tea.Cmd {
	if m.state == StateLibrary {
		return loadLibraryCmd(m.deps.Controller)
	}
	return m.loginUI.Init()
}

func (m AppModel) enterLibrary() (AppModel, tea.Cmd) {
	m.state = StateLibrary
	m.libraryUI.user = m.displayName()
	m.libraryUI.loading = true
	m.libraryUI.clearStatus()
	return m, loadLibraryCmd(m.deps.Controller)
}

// switchLanguage moves to the next locale and persists it.
func (m AppModel) switchLanguage() (AppModel, tea.Cmd) {
	next := lang.NextLocale()
	if !lang.SetLocale(next) {
		return m, nil
	}
	m.libraryUI.applyLanguage()
	m.loginUI.applyLanguage()
	m.libraryUI.setStatus(lang.LanguageChanged(next), false)

	path := m.deps.ConfigPath
	return m, func() tea.Msg {
		if path == "" {
			return languageChangedMsg{}
		}
		if err := utils.SaveLanguage(path, string(next)); err != nil {
			return errMsg{errors.New(lang.SaveConfigFailed(err))}
		}
		return languageChangedMsg{}
	}
}

func (m AppModel) resize(msg tea.WindowSizeMsg) AppModel {
	m.width = msg.Width
	m.height = msg.Height
	m.loginUI, _ = m.loginUI.Update(msg)
	m.libraryUI, _ = m.libraryUI.Update(msg)
	m.addUI, _ = m.addUI.Update(msg)
	m.detailsUI, _ = m.detailsUI.Update(msg)
	return m
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case errMsg:
		logger.Warn("ui error", "error", msg.error)
		m.libraryUI.setStatus(msg.Error(), true)
		return m, nil

	case languageChangedMsg:
		return m, nil

	case libraryLoadedMsg, controllerEventMsg:
		// The library list stays current whichever screen is on top.
		var cmd tea.Cmd
		m.libraryUI, cmd = m.libraryUI.Update(msg)
		return m, cmd

	case authMsg:
		var cmd tea.Cmd
		m.loginUI, cmd = m.loginUI.Update(msg)
		if msg.ok {
			return m.enterLibrary()
		}
		return m, cmd

	case loggedOutMsg:
		m.state = StateLogin
		m.loginUI.reset()
		m.libraryUI.user = ""
		return m, m.loginUI.Init()

	case closeModalMsg:
		m.state = StateLibrary
		return m, nil

	case addedMsg:
		if msg.err == nil {
			m.state = StateLibrary
			m.libraryUI.refresh()
			m.libraryUI.setStatus(lang.Added(msg.book.Title), false)
			return m, nil
		}
		var cmd tea.Cmd
		m.addUI, cmd = m.addUI.Update(msg)
		return m, cmd

	case removedMsg:
		if msg.err == nil {
			m.state = StateLibrary
			m.libraryUI.refresh()
			m.libraryUI.setStatus(lang.Removed(msg.book.Title), false)
			return m, nil
		}
		// The optimistic removal is not rolled back. A reload shows the
		// server's view again.
		var cmd tea.Cmd
		m.detailsUI, cmd = m.detailsUI.Update(msg)
		return m, tea.Batch(cmd, loadLibraryCmd(m.deps.Controller))
	}

	switch m.state {
	case StateLogin:
		return m.handleStateLogin(msg)
	case StateLibrary:
		return m.handleStateLibrary(msg)
	case StateAdd:
		var cmd tea.Cmd
		m.addUI, cmd = m.addUI.Update(msg)
		return m, cmd
	case StateDetails:
		var cmd tea.Cmd
		m.detailsUI, cmd = m.detailsUI.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m AppModel) handleStateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.loginUI, cmd = m.loginUI.Update(msg)
	return m, cmd
}

func (m AppModel) handleStateLibrary(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.libraryUI.Searching() {
		switch keyMsg.String() {
		case "q":
			return m, tea.Quit
		case "a":
			m.addUI = NewAddModel(m.deps.Controller)
			m.addUI.resize(m.width, m.height)
			m.state = StateAdd
			return m, m.addUI.Init()
		case "enter":
			book, ok := m.libraryUI.SelectedBook()
			if !ok {
				return m, nil
			}
			m.detailsUI = NewDetailsModel(m.deps.Controller, book, m.width, m.height)
			m.state = StateDetails
			return m, nil
		case "L":
			return m, logoutCmd(m.deps.Auth)
		case "ctrl+l":
			return m.switchLanguage()
		}
	}

	var cmd tea.Cmd
	m.libraryUI, cmd = m.libraryUI.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	switch m.state {
	case StateLogin:
		return m.loginUI.View()
	case StateLibrary:
		return m.libraryUI.View()
	case StateAdd:
		return m.addUI.View()
	case StateDetails:
		return m.detailsUI.View()
	default:
		return lang.Active().Common.UnknownState
	}
}

// RunApp starts the interactive client and blocks until it exits.
func RunApp(deps Deps) error {
	if deps.Bridge == nil {
		deps.Bridge = &Bridge{}
	}
	p := tea.NewProgram(NewAppModel(deps), tea.WithAltScreen())
	deps.Bridge.attach(p)
	defer deps.Bridge.attach(nil)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
