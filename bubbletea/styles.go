package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/mdstream"
)

// Styles maps a Theme to lipgloss styles for the status line and prompt.
type Styles struct {
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Loading lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t mdstream.Theme) Styles {
	return Styles{
		Error:   lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:  lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Loading: lipgloss.NewStyle().Foreground(ansiColor(t.Loading)),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
