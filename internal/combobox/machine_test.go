package combobox

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/clock"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/notify"
)

var (
	sgd = candidate.Candidate{Name: "SGD", Rate: 1.0}
	usd = candidate.Candidate{Name: "USD", Rate: 0.73}
	eur = candidate.Candidate{Name: "EUR", Rate: 0.68}
	sek = candidate.Candidate{Name: "SEK", Rate: 7.9}

	rates = []candidate.Candidate{sgd, usd, eur, sek}
)

type harness struct {
	m   *Machine
	clk *clock.FakeClock
	rec *notify.Recorder
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	clk := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	opts.Clock = clk
	if opts.ID == "" {
		opts.ID = "test"
	}
	if opts.Candidates == nil {
		opts.Candidates = rates
	}
	m := New(opts)
	rec := &notify.Recorder{}
	m.Subscribe(rec.Record)
	t.Cleanup(m.Close)
	return &harness{m: m, clk: clk, rec: rec}
}

// typeAndSettle types q and waits out the query debounce.
func (h *harness) typeAndSettle(q string) Snapshot {
	h.m.OnTextInput(q)
	h.clk.Advance(DefaultQueryDelay)
	return h.m.Snapshot()
}

func (h *harness) key(k Key) Snapshot {
	h.m.OnKeyDown(k)
	h.clk.Advance(DefaultKeyDelay)
	return h.m.Snapshot()
}

func TestNewDefaults(t *testing.T) {
	m := New(Options{})
	defer m.Close()
	s := m.Snapshot()
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.Open)
	assert.Equal(t, -1, s.Highlighted)
	assert.NotNil(t, s.Results)
	assert.NotNil(t, s.Selection)
	assert.False(t, m.Multiple())
}

func TestQuerySettlesOpen(t *testing.T) {
	h := newHarness(t, Options{})

	h.m.OnTextInput("s")
	s := h.m.Snapshot()
	assert.True(t, s.Loading)
	assert.False(t, s.Open)

	h.clk.Advance(DefaultQueryDelay - time.Millisecond)
	assert.Equal(t, 0, h.m.FilterPasses())

	h.clk.Advance(time.Millisecond)
	s = h.m.Snapshot()
	assert.True(t, s.Open)
	assert.False(t, s.Loading)
	assert.Equal(t, -1, s.Highlighted)
	assert.Equal(t, []string{"SGD", "USD", "SEK"}, candidate.Names(s.Results))
	assert.Equal(t, 1, h.m.FilterPasses())
}

func TestTypingUScenario(t *testing.T) {
	h := newHarness(t, Options{Candidates: []candidate.Candidate{sgd, usd, eur}})
	s := h.typeAndSettle("u")
	assert.True(t, s.Open)
	// Substring matching also finds the "u" in EUR.
	assert.Equal(t, []candidate.Candidate{usd, eur}, s.Results)

	s = h.typeAndSettle("us")
	assert.Equal(t, []candidate.Candidate{usd}, s.Results)
}

func TestDebounceCoalescing(t *testing.T) {
	h := newHarness(t, Options{})
	var seen []string
	h.m.SetFilter(func(list []candidate.Candidate, q string) ([]candidate.Candidate, error) {
		seen = append(seen, q)
		return filter.CaseInsensitivePartial(list, q)
	})

	for _, q := range []string{"S", "SG", "SGD"} {
		h.m.OnTextInput(q)
		h.clk.Advance(100 * time.Millisecond)
	}
	h.clk.Advance(time.Second)

	assert.Equal(t, []string{"SGD"}, seen)
	assert.Equal(t, 1, h.m.FilterPasses())
	assert.Equal(t, []candidate.Candidate{sgd}, h.m.Snapshot().Results)
}

func TestNoMatchesStaysClosed(t *testing.T) {
	h := newHarness(t, Options{})
	s := h.typeAndSettle("zz")
	assert.False(t, s.Open)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Results)
	assert.NoError(t, s.Err)
}

func TestEmptyQueryClosesRegardlessOfState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"fresh", func(*harness) {}},
		{"open", func(h *harness) { h.typeAndSettle("s") }},
		{"pending", func(h *harness) { h.m.OnTextInput("s") }},
		{"highlighted", func(h *harness) {
			h.typeAndSettle("s")
			h.key(KeyArrowDown)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			tt.setup(h)
			h.m.OnTextInput("")
			s := h.m.Snapshot()
			assert.False(t, s.Open)
			assert.False(t, s.Loading)
			assert.Empty(t, s.Results)
			assert.Equal(t, -1, s.Highlighted)

			h.clk.Advance(time.Second)
			assert.False(t, h.m.Snapshot().Open, "no stale pass may reopen")
		})
	}
}

func TestEmptyQueryNeverInvokesFilter(t *testing.T) {
	h := newHarness(t, Options{Filter: func([]candidate.Candidate, string) ([]candidate.Candidate, error) {
		t.Fatal("filter invoked")
		return nil, nil
	}})
	h.m.OnTextInput("")
	h.m.OnInputClick()
	h.clk.Advance(time.Second)
	assert.Equal(t, 0, h.m.FilterPasses())
}

func TestArrowNavigationWraps(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s") // SGD, USD, SEK

	assert.Equal(t, 0, h.key(KeyArrowDown).Highlighted)
	assert.Equal(t, 1, h.key(KeyArrowDown).Highlighted)
	assert.Equal(t, 2, h.key(KeyArrowDown).Highlighted)
	assert.Equal(t, 0, h.key(KeyArrowDown).Highlighted, "down wraps to first")
	assert.Equal(t, 2, h.key(KeyArrowUp).Highlighted, "up wraps to last")
	assert.Equal(t, 1, h.key(KeyArrowUp).Highlighted)
}

func TestArrowUpFromNoHighlight(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	assert.Equal(t, 2, h.key(KeyArrowUp).Highlighted)
}

func TestKeyBurstOnlyLastApplies(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")

	h.m.OnKeyDown(KeyArrowDown)
	h.clk.Advance(50 * time.Millisecond)
	h.m.OnKeyDown(KeyArrowDown)
	h.clk.Advance(50 * time.Millisecond)
	h.m.OnKeyDown(KeyArrowDown)
	h.clk.Advance(DefaultKeyDelay)

	assert.Equal(t, 0, h.m.Snapshot().Highlighted)
}

func TestKeysIgnoredWhileClosed(t *testing.T) {
	h := newHarness(t, Options{})
	h.key(KeyArrowDown)
	assert.Equal(t, -1, h.m.Snapshot().Highlighted)

	h.typeAndSettle("s")
	h.m.OnKeyDown(KeyArrowDown)
	h.m.OnPointerDownOutside()
	h.clk.Advance(DefaultKeyDelay)
	assert.Equal(t, -1, h.m.Snapshot().Highlighted)
}

func TestEnterSelectsHighlighted(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")

	s := h.key(KeyEnter)
	assert.Empty(t, s.Selection, "enter without highlight is a no-op")

	h.key(KeyArrowDown)
	h.key(KeyArrowDown)
	s = h.key(KeyEnter)
	assert.Equal(t, []candidate.Candidate{usd}, s.Selection)

	ev, ok := h.rec.Last(notify.SelectionChanged)
	require.True(t, ok)
	assert.Equal(t, []candidate.Candidate{usd}, ev.Selection)
	assert.Equal(t, "test", ev.Source)
}

func TestEscapeClosesKeepsSelection(t *testing.T) {
	h := newHarness(t, Options{Multiple: true})
	h.typeAndSettle("s")
	h.m.OnItemClick(sgd)

	s := h.key(KeyEscape)
	assert.False(t, s.Open)
	assert.Equal(t, []candidate.Candidate{sgd}, s.Selection)
	assert.Equal(t, "s", s.Query)
}

func TestMultiSelectToggle(t *testing.T) {
	h := newHarness(t, Options{Multiple: true})
	h.typeAndSettle("s")

	h.m.OnItemClick(usd)
	before := h.m.Snapshot().Selection

	h.m.OnItemCheckboxToggle(sgd)
	s := h.m.Snapshot()
	assert.Equal(t, []candidate.Candidate{usd, sgd}, s.Selection, "insertion order")
	assert.True(t, s.Open, "multi-select stays open")

	h.m.OnItemCheckboxToggle(sgd)
	assert.Equal(t, before, h.m.Snapshot().Selection)

	assert.Len(t, h.rec.OfKind(notify.SelectionChanged), 3)
}

func TestSingleSelect(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")

	h.m.OnItemClick(sgd)
	h.m.OnItemClick(usd)
	assert.Equal(t, []candidate.Candidate{usd}, h.m.Snapshot().Selection)

	h.m.OnItemClick(usd)
	assert.Empty(t, h.m.Snapshot().Selection)

	events := h.rec.OfKind(notify.SelectionChanged)
	require.Len(t, events, 3)
	assert.Empty(t, events[2].Selection)
}

func TestSingleSelectUsesNameIdentity(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("usd")
	h.m.OnItemClick(usd)

	// Same name, refreshed rate: still the same candidate.
	h.m.SetCandidates([]candidate.Candidate{{Name: "USD", Rate: 0.74}})
	h.clk.Advance(DefaultQueryDelay)
	h.m.OnItemClick(candidate.Candidate{Name: "USD", Rate: 0.74})
	assert.Empty(t, h.m.Snapshot().Selection)
}

func TestClickNotInResultsIgnored(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("usd")
	h.m.OnItemClick(eur)
	assert.Empty(t, h.m.Snapshot().Selection)
}

func TestSelectionSurvivesTypingAndClosing(t *testing.T) {
	h := newHarness(t, Options{Multiple: true})
	h.typeAndSettle("s")
	h.m.OnItemClick(sek)

	h.m.OnPointerDownOutside()
	h.typeAndSettle("zz")
	h.m.OnTextInput("")
	assert.Equal(t, []candidate.Candidate{sek}, h.m.Snapshot().Selection)

	h.m.ClearSelection()
	assert.Empty(t, h.m.Snapshot().Selection)
	ev, ok := h.rec.Last(notify.SelectionChanged)
	require.True(t, ok)
	assert.Empty(t, ev.Selection)
}

func TestPointerDownOutside(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	h.m.OnItemClick(sgd)

	h.m.OnPointerDownOutside()
	s := h.m.Snapshot()
	assert.False(t, s.Open)
	assert.Equal(t, "s", s.Query)
	assert.Equal(t, []candidate.Candidate{sgd}, s.Selection)
}

func TestInputClickRerunsImmediately(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	h.m.OnPointerDownOutside()
	require.False(t, h.m.Snapshot().Open)

	h.m.OnInputClick()
	s := h.m.Snapshot()
	assert.True(t, s.Open)
	assert.Equal(t, 2, h.m.FilterPasses())

	h.m.OnTextInput("se")
	h.m.OnInputClick()
	s = h.m.Snapshot()
	assert.False(t, s.Loading, "click cancels the pending debounce")
	assert.Equal(t, []candidate.Candidate{sek}, s.Results)
	h.clk.Advance(time.Second)
	assert.Equal(t, 3, h.m.FilterPasses())
}

func TestHighlightResetsOnNewPass(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	h.key(KeyArrowDown)
	require.Equal(t, 0, h.m.Snapshot().Highlighted)

	s := h.typeAndSettle("sg")
	assert.Equal(t, -1, s.Highlighted)
	assert.True(t, s.Open)
}

func TestFilterFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	h.m.OnItemClick(sgd)

	h.m.SetFilter(func([]candidate.Candidate, string) ([]candidate.Candidate, error) {
		return nil, errors.New("backend exploded")
	})
	s := h.typeAndSettle("sg")
	assert.False(t, s.Open)
	assert.Empty(t, s.Results)
	assert.ErrorIs(t, s.Err, filter.ErrStrategy)
	assert.Equal(t, "sg", s.Query)
	assert.Equal(t, []candidate.Candidate{sgd}, s.Selection)

	ev, ok := h.rec.Last(notify.FilterFailed)
	require.True(t, ok)
	assert.Equal(t, "sg", ev.Query)

	h.m.SetFilter(nil)
	s = h.typeAndSettle("sgd")
	assert.NoError(t, s.Err)
	assert.True(t, s.Open)
}

func TestFilterPanicIsContained(t *testing.T) {
	h := newHarness(t, Options{Filter: func([]candidate.Candidate, string) ([]candidate.Candidate, error) {
		panic("bad strategy")
	}})
	var s Snapshot
	require.NotPanics(t, func() { s = h.typeAndSettle("s") })
	assert.False(t, s.Open)
	assert.ErrorIs(t, s.Err, filter.ErrStrategy)
}

func TestRateStrategyInstance(t *testing.T) {
	h := newHarness(t, Options{Filter: filter.RatePrefix})
	s := h.typeAndSettle("0.7")
	assert.Equal(t, []candidate.Candidate{usd}, s.Results)
}

func TestSetCandidatesRefilters(t *testing.T) {
	h := newHarness(t, Options{Candidates: []candidate.Candidate{}})
	s := h.typeAndSettle("u")
	assert.False(t, s.Open)

	h.m.SetCandidates(rates)
	assert.True(t, h.m.Snapshot().Loading)
	h.clk.Advance(DefaultQueryDelay)
	s = h.m.Snapshot()
	assert.True(t, s.Open)
	assert.Equal(t, 4, s.Candidates)
}

func TestSetCandidatesKeepsDismissedDropdownClosed(t *testing.T) {
	tests := []struct {
		name    string
		dismiss func(h *harness)
	}{
		{"pointer outside", func(h *harness) { h.m.OnPointerDownOutside() }},
		{"escape", func(h *harness) { h.key(KeyEscape) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			require.True(t, h.typeAndSettle("s").Open)
			tt.dismiss(h)
			require.False(t, h.m.Snapshot().Open)

			h.m.SetCandidates([]candidate.Candidate{sgd, sek, usd})
			h.clk.Advance(DefaultQueryDelay)
			s := h.m.Snapshot()
			assert.False(t, s.Open)
			assert.Equal(t, []candidate.Candidate{sgd, sek, usd}, s.Results)

			// The next user input opens it again.
			h.m.OnInputClick()
			assert.True(t, h.m.Snapshot().Open)
		})
	}
}

func TestSetCandidatesWhileOpenThenDismissed(t *testing.T) {
	h := newHarness(t, Options{})
	require.True(t, h.typeAndSettle("s").Open)

	h.m.SetCandidates(rates)
	h.m.OnPointerDownOutside()
	h.clk.Advance(DefaultQueryDelay)
	assert.False(t, h.m.Snapshot().Open)

	h.typeAndSettle("se")
	assert.True(t, h.m.Snapshot().Open)
}

func TestSetCandidatesCopies(t *testing.T) {
	list := []candidate.Candidate{usd}
	h := newHarness(t, Options{Candidates: []candidate.Candidate{}})
	h.m.SetCandidates(list)
	list[0].Name = "XXX"
	s := h.typeAndSettle("usd")
	assert.Equal(t, []candidate.Candidate{usd}, s.Results)
}

func TestSourceLoadingFlag(t *testing.T) {
	h := newHarness(t, Options{})
	h.m.SetSourceLoading(true)
	s := h.m.Snapshot()
	assert.True(t, s.SourceLoading)
	assert.False(t, s.Loading)
}

func TestDisabled(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("s")
	h.m.OnTextInput("sg")
	h.m.SetDisabled(true)

	s := h.m.Snapshot()
	assert.True(t, s.Disabled)
	assert.False(t, s.Open)
	assert.False(t, s.Loading)

	h.m.OnTextInput("u")
	h.m.OnInputClick()
	h.m.OnItemClick(sgd)
	h.clk.Advance(time.Second)
	s = h.m.Snapshot()
	assert.Equal(t, "sg", s.Query)
	assert.False(t, s.Open)
	assert.Empty(t, s.Selection)

	h.m.SetDisabled(false)
	h.m.OnInputClick()
	assert.True(t, h.m.Snapshot().Open)
}

func TestEventSequence(t *testing.T) {
	h := newHarness(t, Options{})
	h.typeAndSettle("usd")
	h.m.OnTextInput("")
	assert.Equal(t, []notify.Kind{
		notify.QueryChanged,
		notify.ResultsChanged,
		notify.OpenChanged,
		notify.QueryChanged,
		notify.ResultsChanged,
		notify.OpenChanged,
	}, h.rec.Kinds())
}

func TestSubscriberMayCallBack(t *testing.T) {
	h := newHarness(t, Options{Multiple: true})
	h.m.Subscribe(func(ev notify.Event) {
		if ev.Kind == notify.SelectionChanged && len(ev.Selection) > 1 {
			h.m.ClearSelection()
		}
	})
	h.typeAndSettle("s")
	h.m.OnItemClick(sgd)
	h.m.OnItemClick(usd)
	assert.Empty(t, h.m.Snapshot().Selection)
}

func TestCloseCancelsTimersAndListeners(t *testing.T) {
	h := newHarness(t, Options{})
	h.m.OnTextInput("s")
	h.m.Close()
	h.m.Close()

	h.clk.Advance(time.Second)
	assert.Equal(t, 0, h.m.FilterPasses())
	assert.Equal(t, 0, h.clk.Pending())

	h.rec.Reset()
	h.m.OnTextInput("sg")
	assert.Empty(t, h.rec.Events())

	sub := h.m.Subscribe(h.rec.Record)
	sub.Unsubscribe()
}

func TestInstancesAreIndependent(t *testing.T) {
	a := newHarness(t, Options{ID: "a"})
	b := newHarness(t, Options{ID: "b", Filter: filter.RatePrefix})

	a.typeAndSettle("s")
	assert.True(t, a.m.Snapshot().Open)
	assert.False(t, b.m.Snapshot().Open)

	a.m.OnPointerDownOutside()
	b.typeAndSettle("1")
	assert.True(t, b.m.Snapshot().Open)
	assert.False(t, a.m.Snapshot().Open)
	assert.Len(t, b.rec.OfKind(notify.QueryChanged), 1)
	assert.Len(t, a.rec.OfKind(notify.QueryChanged), 1)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"ArrowDown", KeyArrowDown, true},
		{"up", KeyArrowUp, true},
		{"esc", KeyEscape, true},
		{"Enter", KeyEnter, true},
		{"tab", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.False(t, Key("Tab").Valid())
}
