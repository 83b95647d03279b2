// Package cli holds the terminal output layer: lipgloss styles, the
// result printer and the TOML defaults file. Library packages stay
// silent; everything user-visible renders here.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	primaryColor = lipgloss.Color("#0087AF") // loudnorm blue
	errorColor   = lipgloss.Color("#D70000") // failures
	accentColor  = lipgloss.Color("#FFA500") // best-effort warnings
	mutedColor   = lipgloss.Color("#888888") // keys, secondary text
	textColor    = lipgloss.Color("#FFFFFF") // values
)

var (
	// TitleStyle renders the banner and per-file headings.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// ErrorStyle marks files that produced no output.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// WarnStyle marks best-effort outcomes such as non-convergence.
	WarnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints the banner with the build version.
func PrintVersion(version string) {
	fmt.Println(TitleStyle.Render("loudnorm 🔊"))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints a styled error line to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}
