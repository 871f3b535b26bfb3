package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	cGreen = lipgloss.Color("118")
	cRed   = lipgloss.Color("196")
	cGray  = lipgloss.Color("240")

	styleActive   = lipgloss.NewStyle().Foreground(cGreen)
	styleDisposed = lipgloss.NewStyle().Foreground(cRed)
	styleMuted    = lipgloss.NewStyle().Foreground(cGray)
	styleKey      = lipgloss.NewStyle().Bold(true)
)

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorEnabled reports whether styled output may be written to stdout.
func colorEnabled() bool {
	return !IsNoColor() && isTerminal()
}

// paint renders s with style when colors are enabled.
func paint(style lipgloss.Style, s string) string {
	if !colorEnabled() {
		return s
	}
	return style.Render(s)
}
