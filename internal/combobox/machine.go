// Package combobox implements the dropdown state machine behind an
// autocomplete input.
//
// A Machine owns the query, the filtered results, the highlighted index, the
// open flag and the selection set. The presentation layer forwards raw
// events (OnTextInput, OnKeyDown, OnPointerDownOutside, OnInputClick,
// OnItemClick, OnItemCheckboxToggle) and reads state back through Snapshot
// or the notification port.
//
// Query changes are debounced (500ms by default) and navigation keys go
// through a short micro-debounce (150ms by default); only the newest
// scheduled invocation of each can apply effects. Every handler and every
// timer callback runs under the machine's mutex. Notifications are
// delivered after the mutex is released, so subscribers may call back in.
package combobox

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/clock"
	"github.com/oakwood-commons/fxpick/internal/debounce"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/notify"
)

const (
	DefaultQueryDelay = 500 * time.Millisecond
	DefaultKeyDelay   = 150 * time.Millisecond
)

// Options configures a Machine. The zero value is a single-select dropdown
// with the case-insensitive partial filter and default delays.
type Options struct {
	// ID names the instance in logs and events. Generated when empty.
	ID       string
	Filter   filter.Func
	Multiple bool
	// QueryDelay and KeyDelay fall back to the defaults when zero.
	QueryDelay time.Duration
	KeyDelay   time.Duration
	Clock      clock.Clock
	Logger     logr.Logger
	// Candidates is the initial candidate list.
	Candidates []candidate.Candidate
}

// Machine is one combobox instance. Instances share nothing mutable.
type Machine struct {
	mu sync.Mutex

	id         string
	multiple   bool
	queryDelay time.Duration
	keyDelay   time.Duration
	log        logr.Logger

	filterFn   filter.Func
	candidates []candidate.Candidate

	query       string
	results     []candidate.Candidate
	highlighted int
	selection   []candidate.Candidate
	open        bool
	err         error
	// dismissed holds from an explicit close until the next user input;
	// passes it does not trigger may refresh results but never reopen.
	dismissed   bool

	disabled      bool
	sourceLoading bool
	closed        bool
	passes        int

	queryTimer *debounce.Debouncer
	keyTimer   *debounce.Debouncer
	pendingKey Key

	port   *notify.Port
	outbox []notify.Event
}

// New builds a Machine from opts.
func New(opts Options) *Machine {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	log = log.WithValues("instance", id)

	m := &Machine{
		id:          id,
		multiple:    opts.Multiple,
		queryDelay:  opts.QueryDelay,
		keyDelay:    opts.KeyDelay,
		log:         log,
		filterFn:    opts.Filter,
		candidates:  candidate.Clone(opts.Candidates),
		results:     []candidate.Candidate{},
		highlighted: -1,
		selection:   []candidate.Candidate{},
		port:        notify.NewPort(log),
	}
	if m.queryDelay == 0 {
		m.queryDelay = DefaultQueryDelay
	}
	if m.keyDelay == 0 {
		m.keyDelay = DefaultKeyDelay
	}
	if m.filterFn == nil {
		m.filterFn = filter.CaseInsensitivePartial
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	m.queryTimer = debounce.New(clk, &m.mu, debounce.WithAfterFire(m.flush))
	m.keyTimer = debounce.New(clk, &m.mu, debounce.WithAfterFire(m.flush))
	return m
}

// ID returns the instance identifier.
func (m *Machine) ID() string { return m.id }

// Multiple reports whether the instance is multi-select.
func (m *Machine) Multiple() bool { return m.multiple }

// Subscribe registers fn on the notification port. After Close it returns
// an inert subscription.
func (m *Machine) Subscribe(fn notify.Handler) *notify.Subscription {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return m.port.Subscribe(nil)
	}
	return m.port.Subscribe(fn)
}

// Close tears the instance down: both timers are cancelled for good and
// every subscription is dropped. Later events are ignored.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.queryTimer.Stop()
	m.keyTimer.Stop()
	m.outbox = nil
	m.mu.Unlock()
	m.port.Reset()
	m.log.V(1).Info("combobox closed")
}

// FilterPasses returns how many times the filter strategy has been invoked.
func (m *Machine) FilterPasses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes
}

// update runs fn under the lock unless the instance is closed, then
// delivers whatever fn queued.
func (m *Machine) update(fn func()) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	fn()
	m.mu.Unlock()
	m.flush()
}

// flush publishes queued events outside the lock.
func (m *Machine) flush() {
	m.mu.Lock()
	events := m.outbox
	m.outbox = nil
	m.mu.Unlock()
	m.port.Publish(events...)
}

func (m *Machine) emit(ev notify.Event) {
	ev.Source = m.id
	m.outbox = append(m.outbox, ev)
}
