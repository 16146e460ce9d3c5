package combobox

import (
	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/notify"
)

// OnTextInput records the new query. A non-empty query schedules a filter
// pass after the query delay, superseding any pending one. An empty query
// closes the dropdown at once and drops stale results.
func (m *Machine) OnTextInput(query string) {
	m.update(func() {
		if m.disabled || query == m.query {
			return
		}
		m.query = query
		m.dismissed = false
		m.emit(notify.Event{Kind: notify.QueryChanged, Query: query})
		if query == "" {
			m.queryTimer.CancelPending()
			m.keyTimer.CancelPending()
			m.err = nil
			m.setResults([]candidate.Candidate{})
			m.setOpen(false)
			return
		}
		m.queryTimer.Schedule(m.queryDelay, m.filterPass)
	})
}

// OnKeyDown routes a navigation key through the micro-debounce. Keys are
// ignored while the dropdown is closed, both on receipt and when the
// debounce fires.
func (m *Machine) OnKeyDown(key Key) {
	m.update(func() {
		if m.disabled || !m.open || !key.Valid() {
			return
		}
		m.pendingKey = key
		m.keyTimer.Schedule(m.keyDelay, m.applyKey)
	})
}

// OnPointerDownOutside dismisses the dropdown. Query and selection are kept.
func (m *Machine) OnPointerDownOutside() {
	m.update(func() {
		m.keyTimer.CancelPending()
		m.dismissed = true
		m.setOpen(false)
	})
}

// OnInputClick re-runs the filter immediately for a non-empty query,
// cancelling the pending debounce.
func (m *Machine) OnInputClick() {
	m.update(func() {
		if m.disabled || m.query == "" {
			return
		}
		m.queryTimer.CancelPending()
		m.dismissed = false
		m.filterPass()
	})
}

// OnItemClick selects c. It is a no-op unless c is among the visible
// results.
func (m *Machine) OnItemClick(c candidate.Candidate) {
	m.update(func() { m.selectVisible(c) })
}

// OnItemCheckboxToggle is the multi-select checkbox path; it behaves like
// OnItemClick.
func (m *Machine) OnItemCheckboxToggle(c candidate.Candidate) {
	m.update(func() { m.selectVisible(c) })
}

// SetCandidates replaces the candidate list. With a non-empty query a
// debounced filter pass is scheduled so the dropdown follows the new list.
// A dropdown the user dismissed stays closed through that pass.
func (m *Machine) SetCandidates(list []candidate.Candidate) {
	m.update(func() {
		m.candidates = candidate.Clone(list)
		if m.query != "" && !m.disabled {
			m.queryTimer.Schedule(m.queryDelay, m.filterPass)
		}
	})
}

// SetSourceLoading mirrors the data source's loading flag into snapshots.
func (m *Machine) SetSourceLoading(loading bool) {
	m.update(func() { m.sourceLoading = loading })
}

// SetDisabled toggles the disabled state. Disabling cancels pending work
// and closes the dropdown.
func (m *Machine) SetDisabled(disabled bool) {
	m.update(func() {
		m.disabled = disabled
		if disabled {
			m.queryTimer.CancelPending()
			m.keyTimer.CancelPending()
			m.dismissed = true
			m.setOpen(false)
		}
	})
}

// SetFilter swaps the filter strategy. It takes effect on the next pass.
func (m *Machine) SetFilter(fn filter.Func) {
	m.update(func() {
		if fn == nil {
			fn = filter.CaseInsensitivePartial
		}
		m.filterFn = fn
	})
}

// ClearSelection empties the selection set.
func (m *Machine) ClearSelection() {
	m.update(func() {
		if len(m.selection) == 0 {
			return
		}
		m.selection = []candidate.Candidate{}
		m.emitSelection()
	})
}

// filterPass runs the strategy against the current query. Called with the
// lock held, either from a debounce callback or directly.
func (m *Machine) filterPass() {
	query := m.query
	if query == "" {
		m.setResults([]candidate.Candidate{})
		m.setOpen(false)
		return
	}
	m.passes++
	out, err := filter.Apply(m.filterFn, m.candidates, query)
	if err != nil {
		m.log.Error(err, "filter pass failed", "query", query)
		m.err = err
		m.setResults([]candidate.Candidate{})
		m.setOpen(false)
		m.emit(notify.Event{Kind: notify.FilterFailed, Query: query, Err: err})
		return
	}
	m.log.V(1).Info("filter pass", "query", query, "candidates", len(m.candidates), "results", len(out))
	m.err = nil
	m.setResults(out)
	m.setOpen(len(out) > 0 && !m.dismissed)
}

func (m *Machine) applyKey() {
	key := m.pendingKey
	m.pendingKey = ""
	if !m.open || m.disabled {
		return
	}
	n := len(m.results)
	switch key {
	case KeyArrowDown:
		if n == 0 {
			return
		}
		if m.highlighted < n-1 {
			m.highlighted++
		} else {
			m.highlighted = 0
		}
	case KeyArrowUp:
		if n == 0 {
			return
		}
		if m.highlighted > 0 {
			m.highlighted--
		} else {
			m.highlighted = n - 1
		}
	case KeyEnter:
		if m.highlighted >= 0 && m.highlighted < n {
			m.selectCandidate(m.results[m.highlighted])
		}
	case KeyEscape:
		m.dismissed = true
		m.setOpen(false)
	}
}

func (m *Machine) selectVisible(c candidate.Candidate) {
	if m.disabled || !m.open {
		return
	}
	i := candidate.IndexOf(m.results, c.Name)
	if i < 0 {
		return
	}
	m.selectCandidate(m.results[i])
}

func (m *Machine) selectCandidate(c candidate.Candidate) {
	if m.multiple {
		if i := candidate.IndexOf(m.selection, c.Name); i >= 0 {
			next := make([]candidate.Candidate, 0, len(m.selection)-1)
			next = append(next, m.selection[:i]...)
			m.selection = append(next, m.selection[i+1:]...)
		} else {
			m.selection = append(candidate.Clone(m.selection), c)
		}
	} else {
		if len(m.selection) == 1 && m.selection[0].SameName(c) {
			m.selection = []candidate.Candidate{}
		} else {
			m.selection = []candidate.Candidate{c}
		}
	}
	m.emitSelection()
}

func (m *Machine) emitSelection() {
	m.emit(notify.Event{Kind: notify.SelectionChanged, Selection: candidate.Clone(m.selection)})
}

// setResults installs a new result set; the highlight always resets.
func (m *Machine) setResults(results []candidate.Candidate) {
	m.highlighted = -1
	if len(results) == 0 && len(m.results) == 0 {
		return
	}
	m.results = results
	m.emit(notify.Event{Kind: notify.ResultsChanged, Query: m.query, Results: candidate.Clone(results)})
}

func (m *Machine) setOpen(open bool) {
	if m.open == open {
		return
	}
	m.open = open
	m.emit(notify.Event{Kind: notify.OpenChanged, Open: open})
}
