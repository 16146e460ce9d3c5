// Package formatter renders candidate lists for the command line: an
// aligned table, JSON, YAML or one name per line.
package formatter

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatList  = "list"
)

// Formats lists every supported output format.
var Formats = []string{FormatTable, FormatJSON, FormatYAML, FormatList}

var (
	defaultHeaderFG   = lipgloss.Color("12")
	defaultHeaderBG   = lipgloss.Color("236")
	defaultKeyColor   = lipgloss.Color("14")
	defaultValueColor = lipgloss.Color("248")

	headerStyle lipgloss.Style
	keyStyle    lipgloss.Style
	valueStyle  lipgloss.Style
)

// TableColors controls the rendered colors for the table format.
// Empty fields fall back to the defaults.
type TableColors struct {
	HeaderFG   color.Color
	HeaderBG   color.Color
	KeyColor   color.Color
	ValueColor color.Color
}

func applyTableTheme(tc TableColors) {
	hfg, hbg, kc, vc := tc.HeaderFG, tc.HeaderBG, tc.KeyColor, tc.ValueColor
	if hfg == nil {
		hfg = defaultHeaderFG
	}
	if hbg == nil {
		hbg = defaultHeaderBG
	}
	if kc == nil {
		kc = defaultKeyColor
	}
	if vc == nil {
		vc = defaultValueColor
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(hfg).Background(hbg)
	keyStyle = lipgloss.NewStyle().Foreground(kc)
	valueStyle = lipgloss.NewStyle().Foreground(vc)
}

// SetTableTheme overrides the table styles.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// Options tune Write.
type Options struct {
	NoColor bool
	// Decimals fixes the rate precision in table and list output; negative
	// prints the shortest exact form.
	Decimals int
}

// Write renders list to w in format.
func Write(w io.Writer, list []candidate.Candidate, format string, opts Options) error {
	var out string
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTable, "":
		out = RenderTable(list, opts)
	case FormatJSON:
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		out = string(data) + "\n"
	case FormatYAML:
		s, err := EncodeYAML(list, YAMLFormatOptions{})
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		out = s
	case FormatList:
		var b strings.Builder
		for _, c := range list {
			b.WriteString(c.Name)
			b.WriteByte('\n')
		}
		out = b.String()
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
	_, err := io.WriteString(w, out)
	return err
}

// RenderTable renders a NAME/RATE table, rates right-aligned.
func RenderTable(list []candidate.Candidate, opts Options) string {
	rates := make([]string, len(list))
	nameW, rateW := runewidth.StringWidth("NAME"), runewidth.StringWidth("RATE")
	for i, c := range list {
		rates[i] = formatRate(c.Rate, opts.Decimals)
		nameW = max(nameW, runewidth.StringWidth(c.Name))
		rateW = max(rateW, runewidth.StringWidth(rates[i]))
	}

	var b strings.Builder
	header := padRight("NAME", nameW) + "  " + padLeft("RATE", rateW)
	if !opts.NoColor {
		header = headerStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')
	for i, c := range list {
		name, rate := padRight(c.Name, nameW), padLeft(rates[i], rateW)
		if !opts.NoColor {
			name, rate = keyStyle.Render(name), valueStyle.Render(rate)
		}
		b.WriteString(name + "  " + rate + "\n")
	}
	return b.String()
}

func formatRate(rate float64, decimals int) string {
	if decimals < 0 {
		return candidate.Candidate{Rate: rate}.RateString()
	}
	return fmt.Sprintf("%.*f", decimals, rate)
}

func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}
