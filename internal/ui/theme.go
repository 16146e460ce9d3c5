package ui

import (
	"image/color"
	"regexp"

	"charm.land/lipgloss/v2"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// Theme defines the colors used by the selector screen.
type Theme struct {
	TitleFG       color.Color // Screen title
	LabelFG       color.Color // Instance label
	DescriptionFG color.Color // Instance description
	InputFG       color.Color // Query text
	InputBorder   color.Color // Border of an unfocused input
	FocusBorder   color.Color // Border of the focused input
	PlaceholderFG color.Color
	RowBG         color.Color // Even dropdown rows
	RowAltBG      color.Color // Odd dropdown rows
	HighlightFG   color.Color // Highlighted row text
	HighlightBG   color.Color // Highlighted row background
	RateFG        color.Color // Rate column
	CheckFG       color.Color // Checked checkbox
	ErrorFG       color.Color
	StatusFG      color.Color
	HelpFG        color.Color
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		TitleFG:       lipgloss.Color("81"),  // cyan title
		LabelFG:       lipgloss.Color("252"), // near white labels
		DescriptionFG: lipgloss.Color("244"), // muted description
		InputFG:       lipgloss.Color("252"),
		InputBorder:   lipgloss.Color("238"),
		FocusBorder:   lipgloss.Color("81"),
		PlaceholderFG: lipgloss.Color("240"),
		RowBG:         lipgloss.Color("235"),
		RowAltBG:      lipgloss.Color("237"),
		HighlightFG:   lipgloss.Color("250"), // muted light text on highlight
		HighlightBG:   lipgloss.Color("24"),  // deep teal highlight
		RateFG:        lipgloss.Color("246"),
		CheckFG:       lipgloss.Color("114"), // mint checkmarks
		ErrorFG:       lipgloss.Color("203"), // softer red for errors
		StatusFG:      lipgloss.Color("81"),
		HelpFG:        lipgloss.Color("244"),
	}
}

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	title       lipgloss.Style
	label       lipgloss.Style
	description lipgloss.Style
	input       lipgloss.Style
	inputFocus  lipgloss.Style
	row         lipgloss.Style
	rowAlt      lipgloss.Style
	highlight   lipgloss.Style
	rate        lipgloss.Style
	check       lipgloss.Style
	err         lipgloss.Style
	status      lipgloss.Style
	help        lipgloss.Style
	disabled    lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:       lipgloss.NewStyle().Foreground(t.TitleFG).Bold(true),
		label:       lipgloss.NewStyle().Foreground(t.LabelFG).Bold(true),
		description: lipgloss.NewStyle().Foreground(t.DescriptionFG).Italic(true),
		input:       lipgloss.NewStyle().Foreground(t.InputFG).Border(lipgloss.NormalBorder()).BorderForeground(t.InputBorder),
		inputFocus:  lipgloss.NewStyle().Foreground(t.InputFG).Border(lipgloss.NormalBorder()).BorderForeground(t.FocusBorder),
		row:         lipgloss.NewStyle().Background(t.RowBG),
		rowAlt:      lipgloss.NewStyle().Background(t.RowAltBG),
		highlight:   lipgloss.NewStyle().Foreground(t.HighlightFG).Background(t.HighlightBG).Bold(true),
		rate:        lipgloss.NewStyle().Foreground(t.RateFG),
		check:       lipgloss.NewStyle().Foreground(t.CheckFG),
		err:         lipgloss.NewStyle().Foreground(t.ErrorFG),
		status:      lipgloss.NewStyle().Foreground(t.StatusFG),
		help:        lipgloss.NewStyle().Foreground(t.HelpFG),
		disabled:    lipgloss.NewStyle().Foreground(t.PlaceholderFG).Faint(true),
	}
}

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}
