package ui

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

type hitKind int

const (
	hitNone hitKind = iota
	hitInput
	hitItem
)

// hit maps one screen line to what a click on it means.
type hit struct {
	kind      hitKind
	instance  int
	candidate candidate.Candidate
}

// frame is one rendered screen plus the click map for each of its lines.
// View and mouse routing build it the same way so they never disagree.
type frame struct {
	lines []string
	hits  []hit
}

func (f *frame) add(block string, h hit) {
	for _, line := range strings.Split(block, "\n") {
		f.lines = append(f.lines, line)
		f.hits = append(f.hits, h)
	}
}

func (f *frame) blank() { f.add("", hit{kind: hitNone, instance: -1}) }

// at returns the hit for screen row y.
func (f *frame) at(y int) hit {
	if y < 0 || y >= len(f.hits) {
		return hit{kind: hitNone, instance: -1}
	}
	return f.hits[y]
}

func (f *frame) String() string { return strings.Join(f.lines, "\n") }

// render lays out the whole screen.
func (m *Model) render() *frame {
	f := &frame{}
	width := m.dropdownWidth()
	f.add(m.styles.title.Render(m.Title), hit{kind: hitNone, instance: -1})
	f.blank()

	for i, in := range m.Instances {
		none := hit{kind: hitNone, instance: i}
		snap := in.Machine.Snapshot()

		label := in.Config.Label
		if in.Config.Disabled {
			label += " (disabled)"
		}
		f.add(m.styles.label.Render(label), none)
		f.add(in.renderInput(m.styles, width, i == m.Focus, m.Spinner.View()), hit{kind: hitInput, instance: i})

		if snap.Open {
			total := len(snap.Results)
			start, end := in.Window.Range(total)
			if above := in.Window.Above(total); above > 0 {
				f.add(m.styles.help.Render(fmt.Sprintf("  ↑ %d more", above)), none)
			}
			for idx := start; idx < end; idx++ {
				c := snap.Results[idx]
				style := m.styles.row
				if idx%2 == 1 {
					style = m.styles.rowAlt
				}
				if idx == snap.Highlighted {
					style = m.styles.highlight
				}
				for n, text := range RowLines(c, in.Config.Render) {
					prefix := strings.Repeat(" ", markerWidth)
					if n == 0 {
						prefix = marker(snap.Multiple, snap.IsSelected(c.Name))
					}
					f.add(style.Render(fit(prefix+text, width)), hit{kind: hitItem, instance: i, candidate: c})
				}
			}
			if below := in.Window.Below(total); below > 0 {
				f.add(m.styles.help.Render(fmt.Sprintf("  ↓ %d more", below)), none)
			}
		}
		if snap.Err != nil {
			f.add(m.styles.err.Render(fit("filter error: "+snap.Err.Error(), width)), none)
		}
		if in.Config.Description != "" {
			f.add(m.styles.description.Render(in.Config.Description), none)
		}
		f.add(m.styles.help.Render("Selected: "+joinNames(snap.Selection)), none)
		f.blank()
	}

	switch {
	case m.SourceErr != nil:
		f.add(m.styles.err.Render("source: "+m.SourceErr.Error()), hit{kind: hitNone, instance: -1})
	case m.Status != "":
		f.add(m.styles.status.Render(m.Status), hit{kind: hitNone, instance: -1})
	}
	f.add(m.styles.help.Render(helpLine), hit{kind: hitNone, instance: -1})
	return f
}

const helpLine = "tab focus • ↑/↓ move • enter select • esc close • ctrl+l clear • ctrl+y copy • ctrl+c quit"
