package cssblocks

import "github.com/charmbracelet/lipgloss"

// Terminal styles, named by what they mark in a report.
var (
	styleLocation = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	styleHeading  = styleLocation
	styleFailed   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	styleIssues   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	styleCaret    = styleIssues
	styleValid    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	styleMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// paint renders text in style, or returns it as is when colors are off.
func paint(style lipgloss.Style, text string, useColors bool) string {
	if !useColors {
		return text
	}
	return style.Render(text)
}

// blockStatus is the status of a Block in listings: "failed" when parsing
// threw, its recorded error count, or "ok".
func blockStatus(b BlockSummary, useColors bool) string {
	switch {
	case b.Failed:
		return paint(styleFailed, "failed", useColors)
	case b.Errors > 0:
		return paint(styleIssues, pluralizeCount(b.Errors, "error", "errors"), useColors)
	}
	return paint(styleValid, "ok", useColors)
}
