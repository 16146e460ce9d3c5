package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/clock"
	"github.com/oakwood-commons/fxpick/internal/combobox"
	"github.com/oakwood-commons/fxpick/internal/config"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/notify"
	"github.com/oakwood-commons/fxpick/internal/ratesource"
	"github.com/oakwood-commons/fxpick/pkg/logger"
)

// Options configures a Model.
type Options struct {
	Config   config.Config
	Registry *filter.Registry
	// Source supplies candidates on Init. Nil leaves every instance empty.
	Source  ratesource.Source
	Clock   clock.Clock
	Logger  logr.Logger
	Theme   *Theme
	NoColor bool
	Width   int
	Height  int
}

// Model is the Bubble Tea model of the selector screen.
type Model struct {
	Title     string
	Instances []*Instance
	Focus     int
	Spinner   spinner.Model
	NoColor   bool
	WinWidth  int
	WinHeight int
	// Status is the most recent selection summary.
	Status    string
	SourceErr error

	ctx     context.Context
	log     logr.Logger
	source  ratesource.Source
	styles  styles
	width   int
	events  chan notify.Event
	subs    []*notify.Subscription
	passes  []int
	shown   [][]string
	closed  bool
}

type (
	// candidatesMsg carries the outcome of a source fetch.
	candidatesMsg struct {
		list []candidate.Candidate
		err  error
	}
	// machineMsg wakes the program after a machine notification.
	machineMsg notify.Event
)

// NewModel builds one Instance per configured instance.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if len(opts.Config.Instances) == 0 {
		return nil, errors.New("no instances configured")
	}
	reg := opts.Registry
	if reg == nil {
		var err error
		if reg, err = filter.DefaultRegistry(); err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		Title:     opts.Config.App.Title,
		Spinner:   s,
		NoColor:   opts.NoColor,
		WinWidth:  opts.Width,
		WinHeight: opts.Height,
		ctx:       ctx,
		log:       log,
		source:    opts.Source,
		styles:    newStyles(theme),
		width:     opts.Config.Dropdown.Width,
		events:    make(chan notify.Event, 64),
	}
	for _, ic := range opts.Config.Instances {
		fn, err := reg.Resolve(ic.Strategy)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("instance %s: %w", ic.ID, err)
		}
		machine := combobox.New(combobox.Options{
			ID:         ic.ID,
			Filter:     fn,
			Multiple:   ic.Multiple,
			QueryDelay: opts.Config.Debounce.Query.Std(),
			KeyDelay:   opts.Config.Debounce.Keys.Std(),
			Clock:      opts.Clock,
			Logger:     log,
		})
		machine.SetDisabled(ic.Disabled)
		in := newInstance(ic, machine, opts.Config.Dropdown.MaxRows, m.dropdownWidth(), logger.ForInstance(&log, ic.ID))
		m.subs = append(m.subs, machine.Subscribe(m.forward))
		m.Instances = append(m.Instances, in)
		m.passes = append(m.passes, 0)
		m.shown = append(m.shown, nil)
	}
	m.setFocus(m.firstEnabled())
	return m, nil
}

// forward runs on whatever goroutine published the event. It never blocks:
// a full channel already holds pending wakeups, and observe reads state from
// snapshots, so a dropped event is caught up by the next one.
func (m *Model) forward(ev notify.Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// pump observes queued notifications without blocking. Headless runs use it
// in place of the program's event loop.
func (m *Model) pump() {
	for {
		select {
		case ev := <-m.events:
			m.observe(ev)
		default:
			return
		}
	}
}

func waitForEvent(ch <-chan notify.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return machineMsg(ev)
	}
}

func fetchCandidates(ctx context.Context, src ratesource.Source) tea.Cmd {
	return func() tea.Msg {
		list, err := src.Fetch(ctx)
		return candidatesMsg{list: list, err: err}
	}
}

// Init starts the spinner, the source fetch and the event pump.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.Spinner.Tick, waitForEvent(m.events)}
	if cmd := m.startFetch(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) startFetch() tea.Cmd {
	if m.source == nil {
		return nil
	}
	for _, in := range m.Instances {
		in.Machine.SetSourceLoading(true)
	}
	m.log.V(1).Info("fetching candidates", "source", m.source.Describe())
	return fetchCandidates(m.ctx, m.source)
}

// Update routes terminal events into the focused machine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.syncWindows()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		for _, in := range m.Instances {
			in.Input.SetWidth(inputWidth(m.dropdownWidth()))
		}
		return m, nil

	case candidatesMsg:
		m.applyCandidates(msg)
		return m, nil

	case machineMsg:
		m.observe(notify.Event(msg))
		return m, waitForEvent(m.events)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		if mouse.Button == tea.MouseLeft {
			m.click(mouse.X, mouse.Y)
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	action := ActionFor(msg.String())
	switch action {
	case ActionQuit:
		m.Close()
		return m, tea.Quit
	case ActionNextFocus:
		m.cycleFocus(1)
		return m, nil
	case ActionPrevFocus:
		m.cycleFocus(-1)
		return m, nil
	}

	in := m.focused()
	if in == nil {
		return m, nil
	}
	switch action {
	case ActionUp:
		in.Machine.OnKeyDown(combobox.KeyArrowUp)
	case ActionDown:
		in.Machine.OnKeyDown(combobox.KeyArrowDown)
	case ActionSelect:
		in.Machine.OnKeyDown(combobox.KeyEnter)
	case ActionClose:
		in.Machine.OnKeyDown(combobox.KeyEscape)
	case ActionClear:
		in.Machine.ClearSelection()
	case ActionCopy:
		m.copySelection(in)
	default:
		return m, m.updateFocusedInput(msg)
	}
	return m, nil
}

// copySelection puts the focused instance's selected names on the clipboard.
func (m *Model) copySelection(in *Instance) {
	sel := in.Machine.Snapshot().Selection
	if len(sel) == 0 {
		m.Status = in.Config.Label + ": nothing to copy"
		return
	}
	text := strings.Join(candidate.Names(sel), ",")
	if err := CopyToClipboard(text); err != nil {
		m.log.Error(err, "clipboard copy failed")
		m.Status = "copy failed: " + err.Error()
		return
	}
	m.Status = "copied " + text
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	in := m.focused()
	if in == nil || in.Config.Disabled {
		return nil
	}
	var cmd tea.Cmd
	in.Input, cmd = in.Input.Update(msg)
	in.syncQuery()
	return cmd
}

// click dispatches a left click at screen cell (x, y). Every instance the
// click lands outside of sees a pointer-down-outside; an instance's label,
// description and selection line count as inside.
func (m *Model) click(x, y int) {
	h := m.render().at(y)
	for i, in := range m.Instances {
		if h.instance != i {
			in.Machine.OnPointerDownOutside()
		}
	}
	if h.instance < 0 || h.instance >= len(m.Instances) {
		return
	}
	in := m.Instances[h.instance]
	switch h.kind {
	case hitInput:
		m.setFocus(h.instance)
		in.Machine.OnInputClick()
	case hitItem:
		if x < markerWidth {
			in.Machine.OnItemCheckboxToggle(h.candidate)
		} else {
			in.Machine.OnItemClick(h.candidate)
		}
	}
}

func (m *Model) applyCandidates(msg candidatesMsg) {
	if msg.err != nil {
		m.SourceErr = msg.err
		m.log.Error(msg.err, "candidate fetch failed")
	} else {
		m.SourceErr = nil
		m.log.Info("candidates loaded", "count", len(msg.list))
	}
	for _, in := range m.Instances {
		in.Machine.SetCandidates(msg.list)
		in.Machine.SetSourceLoading(false)
	}
}

// observe reconciles the status line with each instance's selection. The
// last instance whose selection changed since the previous call wins.
func (m *Model) observe(ev notify.Event) {
	m.log.V(2).Info("machine event", "event", ev.String())
	for i, in := range m.Instances {
		sel := in.Machine.Snapshot().Selection
		names := candidate.Names(sel)
		if slices.Equal(names, m.shown[i]) {
			continue
		}
		m.shown[i] = names
		if len(sel) > 0 {
			m.log.Info("selection changed", "instance", in.Machine.ID(), "selection", names)
		}
		m.Status = in.Config.Label + ": " + joinNames(sel)
	}
}

// syncWindows scrolls each dropdown to its highlight and back to the top
// after every new filter pass.
func (m *Model) syncWindows() {
	for i, in := range m.Instances {
		if p := in.Machine.FilterPasses(); p != m.passes[i] {
			m.passes[i] = p
			in.Window.Top = 0
		}
		in.follow()
	}
}

func (m *Model) focused() *Instance {
	if m.Focus < 0 || m.Focus >= len(m.Instances) {
		return nil
	}
	return m.Instances[m.Focus]
}

func (m *Model) firstEnabled() int {
	for i, in := range m.Instances {
		if !in.Config.Disabled {
			return i
		}
	}
	return -1
}

// cycleFocus moves focus by step, skipping disabled instances. The
// instance losing focus is dismissed like a click elsewhere.
func (m *Model) cycleFocus(step int) {
	n := len(m.Instances)
	for k, idx := 1, m.Focus; k <= n; k++ {
		idx = ((idx+step)%n + n) % n
		if !m.Instances[idx].Config.Disabled {
			if in := m.focused(); in != nil && idx != m.Focus {
				in.Machine.OnPointerDownOutside()
			}
			m.setFocus(idx)
			return
		}
	}
}

func (m *Model) setFocus(idx int) {
	m.Focus = idx
	for i, in := range m.Instances {
		if i == idx {
			in.Input.Focus()
		} else {
			in.Input.Blur()
		}
	}
}

func (m *Model) dropdownWidth() int {
	w := m.width
	if w <= 0 {
		w = 44
	}
	if m.WinWidth > 0 {
		w = min(w, m.WinWidth)
	}
	return w
}

// Close tears down every machine. It is safe to call more than once.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, sub := range m.subs {
		sub.Unsubscribe()
	}
	for _, in := range m.Instances {
		in.Machine.Close()
	}
}

// Selections returns each instance's selection by instance ID.
func (m *Model) Selections() map[string][]candidate.Candidate {
	out := make(map[string][]candidate.Candidate, len(m.Instances))
	for _, in := range m.Instances {
		out[in.Machine.ID()] = in.Machine.Snapshot().Selection
	}
	return out
}

// View renders the screen.
func (m *Model) View() tea.View {
	view := m.render().String()
	if m.WinHeight > 0 {
		view = padHeight(view, m.WinHeight)
	}
	if m.NoColor {
		view = stripANSI(view)
	}
	v := tea.NewView(view)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// padHeight pads or clips s to exactly height lines.
func padHeight(s string, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
