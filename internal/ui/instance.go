package ui

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/combobox"
	"github.com/oakwood-commons/fxpick/internal/config"
	"github.com/oakwood-commons/fxpick/internal/limiter"
)

// Instance is one combobox on screen: its configuration, the state machine
// behind it and the text field feeding it.
type Instance struct {
	Config  config.InstanceConfig
	Machine *combobox.Machine
	Input   textinput.Model
	Window  limiter.Window

	log logr.Logger
}

func newInstance(cfg config.InstanceConfig, m *combobox.Machine, maxRows, width int, log logr.Logger) *Instance {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 64
	ti.SetWidth(inputWidth(width))
	if !cfg.Disabled {
		ti.Placeholder = cfg.Placeholder
	}
	rows := maxRows
	if cfg.Render == config.RenderTwoLine {
		// Two-line rows use twice the height; keep the dropdown the same size.
		rows = max(maxRows/2, 1)
	}
	return &Instance{
		Config:  cfg,
		Machine: m,
		Input:   ti,
		Window:  limiter.Window{Rows: rows},
		log:     log,
	}
}

// inputWidth leaves room inside a bordered box of the given width for the
// prompt, the cursor and the loading spinner.
func inputWidth(width int) int {
	return max(width-lipgloss.Width(searchPrompt)-6, 8)
}

// syncQuery pushes the field's value into the machine when it changed.
func (in *Instance) syncQuery() {
	if in.Config.Disabled {
		return
	}
	value := in.Input.Value()
	if value == in.Machine.Snapshot().Query {
		return
	}
	in.log.V(2).Info("query input", "query", value)
	in.Machine.OnTextInput(value)
}

// follow keeps the highlighted row inside the visible window.
func (in *Instance) follow() {
	snap := in.Machine.Snapshot()
	in.Window = in.Window.Follow(snap.Highlighted, len(snap.Results))
}

func (in *Instance) rowHeight() int {
	if in.Config.Render == config.RenderTwoLine {
		return 2
	}
	return 1
}

// renderInput draws the bordered query field.
func (in *Instance) renderInput(st styles, width int, focused bool, spin string) string {
	snap := in.Machine.Snapshot()
	field := in.Input.View()
	if in.Config.Disabled {
		field = st.disabled.Render(in.Input.Value())
	}
	line := searchPrompt + field
	inner := max(width-2, 1)
	if snap.Loading || snap.SourceLoading {
		pad := inner - lipgloss.Width(line) - lipgloss.Width(spin) - 1
		if pad > 0 {
			line += strings.Repeat(" ", pad) + spin
		}
	}
	style := st.input
	if focused && !in.Config.Disabled {
		style = st.inputFocus
	}
	return style.Width(width).Render(line)
}
