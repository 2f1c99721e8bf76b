package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Out is where all ui output goes.
var Out io.Writer = os.Stdout

var (
	primaryColor   = lipgloss.Color("#7C3AED") // purple
	secondaryColor = lipgloss.Color("#10B981") // green
	mutedColor     = lipgloss.Color("#6B7280") // gray
	dangerColor    = lipgloss.Color("#EF4444") // red
	warnColor      = lipgloss.Color("#F59E0B") // yellow

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	successStyle = lipgloss.NewStyle().Foreground(secondaryColor)
	warnStyle    = lipgloss.NewStyle().Foreground(warnColor)
	errorStyle   = lipgloss.NewStyle().Foreground(dangerColor)
)

func ShowHeader(title string) {
	rule := mutedStyle.Render(strings.Repeat("─", lipgloss.Width(title)+2))
	fmt.Fprintf(Out, " %s\n", rule)
	fmt.Fprintf(Out, " %s\n", titleStyle.Render(title))
	fmt.Fprintf(Out, " %s\n", rule)
}

func ShowSuccess(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func ShowError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(Out, " %s %s: %v\n", errorStyle.Render("✗"), msg, err)
	} else {
		fmt.Fprintf(Out, " %s %s\n", errorStyle.Render("✗"), msg)
	}
}

func ShowWarning(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func ShowInfo(format string, args ...interface{}) {
	fmt.Fprintf(Out, " %s %s\n", mutedStyle.Render("ℹ"), fmt.Sprintf(format, args...))
}

// ShowKeyValues prints aligned name/value rows.
func ShowKeyValues(rows [][2]string) {
	width := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > width {
			width = w
		}
	}
	label := labelStyle.Width(width)
	for _, r := range rows {
		fmt.Fprintf(Out, "  %s  %s\n", label.Render(r[0]), r[1])
	}
}

// CanWriteTo reports whether a file can be created in dir.
func CanWriteTo(dir string) bool {
	f, err := os.CreateTemp(dir, ".gamekeeper-write-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
