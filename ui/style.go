package ui

import (
	gloss "github.com/charmbracelet/lipgloss"
)

const (
	TabSpacing    = 2
	TabPaddingTop = 1
	TabPaddingBot = 0
	ListMaxWidth  = 60
	ModalMaxWidth = 72
	ModalMinWidth = 30
)

// Facet tab styles
var (
	ActiveTabStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa")).
			Padding(TabPaddingTop, TabSpacing, TabPaddingBot, TabSpacing).
			Bold(true).
			Align(gloss.Center)

	InactiveTabStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70")).
				Padding(TabPaddingTop, TabSpacing, TabPaddingBot, TabSpacing).
				Align(gloss.Center)
)

// List container style
var ListStyle = gloss.NewStyle().
	Align(gloss.Left).
	Padding(1, 4) // left/right padding

// Listed item styles
var (
	SelectedTitleStyle = gloss.NewStyle().
				Foreground(gloss.Color("#89b4fa")).
				BorderLeft(true).
				BorderStyle(gloss.NormalBorder()).
				BorderForeground(gloss.Color("#89b4fa")).
				PaddingLeft(1).
				Bold(true)

	SelectedDescStyle = gloss.NewStyle().
				Foreground(gloss.Color("#bac2de")).
				BorderLeft(true).
				BorderStyle(gloss.NormalBorder()).
				BorderForeground(gloss.Color("#89b4fa")).
				PaddingLeft(1)

	NormalTitleStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70")).
				PaddingLeft(2)

	NormalDescStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70")).
			PaddingLeft(2)

	OwnedMarkStyle = gloss.NewStyle().
			Foreground(gloss.Color("#a6e3a1"))
)

var (
	PromptStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa"))

	PromptCursorStyle = gloss.NewStyle().
				Foreground(gloss.Color("#cdd6f4"))

	InputTextStyle = gloss.NewStyle().
			Foreground(gloss.Color("#cdd6f4"))

	InputPlaceholderStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70"))
)

// Header and tabs
var (
	HeaderStyle = gloss.NewStyle().
			Foreground(gloss.Color("#cdd6f4")).
			Bold(true).
			PaddingTop(1).
			Align(gloss.Center)

	SubtitleStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70")).
			Align(gloss.Center)

	TabsRow = gloss.NewStyle().
		Foreground(gloss.Color("#89b4fa")).
		Align(gloss.Center).
		Bold(true)

	UnderlineRow = gloss.NewStyle().
			Foreground(gloss.Color("#363a4f")).
			Align(gloss.Center)

	List = gloss.NewStyle().
		Align(gloss.Center)

	StatusStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa")).
			PaddingLeft(4).
			PaddingRight(4).
			PaddingTop(1).
			Align(gloss.Center)

	StatusErrorStyle = gloss.NewStyle().
				Foreground(gloss.Color("#f38ba8")).
				PaddingLeft(4).
				PaddingRight(4).
				PaddingTop(1).
				Align(gloss.Center)

	StatusMutedStyle = gloss.NewStyle().
				Foreground(gloss.Color("#585b70")).
				PaddingLeft(4).
				PaddingTop(1).
				Align(gloss.Center)
)

// Modals
var (
	ModalBoxStyle = gloss.NewStyle().
			Border(gloss.RoundedBorder()).
			BorderForeground(gloss.Color("#89b4fa")).
			Padding(1, 2)

	ModalTitleStyle = gloss.NewStyle().
			Foreground(gloss.Color("#89b4fa")).
			Bold(true)

	LabelStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70"))

	ValueStyle = gloss.NewStyle().
			Foreground(gloss.Color("#cdd6f4"))

	DangerStyle = gloss.NewStyle().
			Foreground(gloss.Color("#f38ba8")).
			Bold(true)

	HelpStyle = gloss.NewStyle().
			Foreground(gloss.Color("#585b70")).
			PaddingTop(1)
)

// modalWidths returns the dialog width and its content width for a
// terminal width. ModalBoxStyle adds padding 2 and a border on each side.
func modalWidths(width int) (dlgW, contentW int) {
	dlgW = width - 6
	if dlgW < ModalMinWidth {
		dlgW = ModalMinWidth
	}
	if dlgW > ModalMaxWidth {
		dlgW = ModalMaxWidth
	}
	contentW = dlgW - 6
	if contentW < 10 {
		contentW = 10
	}
	return
}

// listWidth is the width available to a list inside ListStyle.
func listWidth(width int) int {
	w := width - 8
	if w > ListMaxWidth {
		w = ListMaxWidth
	}
	if w < 0 {
		w = ListMaxWidth
	}
	return w
}
