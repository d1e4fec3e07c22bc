// Package ui renders the line-oriented terminal output: styled list
// headings, fetch progress, and completion notifications.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "5", Dark: "13"})

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})

	detailStyle = lipgloss.NewStyle().
			Faint(true)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	barFillStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	barEmptyStyle = lipgloss.NewStyle().Faint(true)
)

// Heading styles a list heading such as "top tweets:".
func Heading(s string) string {
	return headingStyle.Render(s)
}

// Link styles a URL.
func Link(s string) string {
	return linkStyle.Render(s)
}

// Detail styles the parenthesized metrics after a link.
func Detail(s string) string {
	return detailStyle.Render(s)
}

// PrintHeading prints a styled list heading.
func PrintHeading(s string) {
	fmt.Println(Heading(s))
}

// PrintEntry prints one list entry: a link plus its metric detail.
func PrintEntry(link, detail string) {
	if detail == "" {
		fmt.Println(Link(link))
		return
	}
	fmt.Printf("%s %s\n", Link(link), Detail(detail))
}

// PrintSuccess prints a completion message.
func PrintSuccess(msg string) {
	fmt.Println(successStyle.Render(msg))
}

// PrintError prints a failure message.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render(msg))
}
