package ui

import (
	"context"
	"time"

	"github.com/oakwood-commons/fxpick/internal/clock"
	"github.com/oakwood-commons/fxpick/internal/combobox"
)

// RenderSnapshot builds the screen headlessly: candidates are fetched
// synchronously, keys are applied with debounces settled on a fake clock,
// and the final frame is returned as text.
func RenderSnapshot(ctx context.Context, opts Options, keys []string) (string, error) {
	fake := clock.Fake(time.Unix(0, 0))
	opts.Clock = fake
	opts.Width, opts.Height = TerminalSize(opts.Width, opts.Height)

	m, err := NewModel(ctx, opts)
	if err != nil {
		return "", err
	}
	defer m.Close()

	if m.source != nil {
		list, err := m.source.Fetch(ctx)
		m.applyCandidates(candidatesMsg{list: list, err: err})
	}
	settle := settleDelay(opts)
	ApplyStartupKeys(m, keys, func() { fake.Advance(settle) })
	m.pump()
	m.syncWindows()

	view := padHeight(m.render().String(), m.WinHeight)
	if m.NoColor {
		view = stripANSI(view)
	}
	return view, nil
}

// settleDelay is long enough for both debounces to fire.
func settleDelay(opts Options) time.Duration {
	q, k := opts.Config.Debounce.Query.Std(), opts.Config.Debounce.Keys.Std()
	if q <= 0 {
		q = combobox.DefaultQueryDelay
	}
	if k <= 0 {
		k = combobox.DefaultKeyDelay
	}
	return max(q, k) + time.Millisecond
}
