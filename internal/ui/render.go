package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/config"
)

const (
	checkboxOn   = "[x] "
	checkboxOff  = "[ ] "
	radioOn      = "(•) "
	radioOff     = "( ) "
	markerWidth  = 4
	searchPrompt = "⌕ "
)

// FormatRate renders a rate with two decimals, the way rows display it.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 2, 64)
}

// RowLines returns the text lines of one dropdown row for the given render
// mode, without selection marker or styling.
func RowLines(c candidate.Candidate, mode string) []string {
	if mode == config.RenderTwoLine {
		return []string{c.Name, "Rate: " + FormatRate(c.Rate)}
	}
	return []string{fmt.Sprintf("%s - %s", c.Name, FormatRate(c.Rate))}
}

func marker(multiple, selected bool) string {
	switch {
	case multiple && selected:
		return checkboxOn
	case multiple:
		return checkboxOff
	case selected:
		return radioOn
	default:
		return radioOff
	}
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// joinNames lists candidate names for status lines.
func joinNames(list []candidate.Candidate) string {
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(candidate.Names(list), ", ")
}
