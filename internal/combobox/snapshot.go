package combobox

import "github.com/oakwood-commons/fxpick/internal/candidate"

// Snapshot is a consistent copy of a Machine's observable state.
type Snapshot struct {
	ID       string
	Query    string
	Open     bool
	Multiple bool
	// Loading is true while a query debounce is pending.
	Loading bool
	// SourceLoading is the data source's own flag, as last reported.
	SourceLoading bool
	Disabled      bool
	Results       []candidate.Candidate
	Highlighted   int
	Selection     []candidate.Candidate
	Candidates    int
	// Err is the failure of the most recent filter pass, if it failed.
	Err error
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		ID:            m.id,
		Query:         m.query,
		Open:          m.open,
		Multiple:      m.multiple,
		Loading:       m.queryTimer.Pending(),
		SourceLoading: m.sourceLoading,
		Disabled:      m.disabled,
		Results:       candidate.Clone(m.results),
		Highlighted:   m.highlighted,
		Selection:     candidate.Clone(m.selection),
		Candidates:    len(m.candidates),
		Err:           m.err,
	}
}

// HighlightedCandidate returns the highlighted result, if any.
func (s Snapshot) HighlightedCandidate() (candidate.Candidate, bool) {
	if s.Highlighted < 0 || s.Highlighted >= len(s.Results) {
		return candidate.Candidate{}, false
	}
	return s.Results[s.Highlighted], true
}

// IsSelected reports whether a candidate named name is selected.
func (s Snapshot) IsSelected(name string) bool {
	return candidate.IndexOf(s.Selection, name) >= 0
}
