// Package combobox is the public API of fxpick's autocomplete core: a
// debounced candidate filter and the dropdown state machine behind it.
//
//	cb, err := combobox.New(
//		combobox.WithCandidates(list),
//		combobox.WithStrategy("rate"),
//	)
//	sub := cb.OnSelectionChanged(func(sel []combobox.Candidate) { ... })
//	defer sub.Unsubscribe()
//	cb.OnTextInput("0.7")
package combobox

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/candidate"
	"github.com/oakwood-commons/fxpick/internal/combobox"
	"github.com/oakwood-commons/fxpick/internal/filter"
	"github.com/oakwood-commons/fxpick/internal/notify"
	"github.com/oakwood-commons/fxpick/pkg/loader"
)

type (
	Candidate    = candidate.Candidate
	FilterFunc   = filter.Func
	Key          = combobox.Key
	Snapshot     = combobox.Snapshot
	Event        = notify.Event
	EventKind    = notify.Kind
	Subscription = notify.Subscription
)

const (
	KeyArrowUp   = combobox.KeyArrowUp
	KeyArrowDown = combobox.KeyArrowDown
	KeyEnter     = combobox.KeyEnter
	KeyEscape    = combobox.KeyEscape

	QueryChanged     = notify.QueryChanged
	ResultsChanged   = notify.ResultsChanged
	OpenChanged      = notify.OpenChanged
	SelectionChanged = notify.SelectionChanged
	FilterFailed     = notify.FilterFailed

	DefaultQueryDelay = combobox.DefaultQueryDelay
	DefaultKeyDelay   = combobox.DefaultKeyDelay
)

// ErrStrategy is wrapped by every filter failure reported in Snapshot.Err.
var ErrStrategy = filter.ErrStrategy

// Combobox is one autocomplete instance.
type Combobox struct {
	*combobox.Machine
}

type settings struct {
	opts     combobox.Options
	strategy string
}

// Option configures New.
type Option func(*settings)

// WithCandidates sets the initial candidate list.
func WithCandidates(list []Candidate) Option {
	return func(s *settings) { s.opts.Candidates = list }
}

// WithFilter supplies a custom filter strategy.
func WithFilter(fn FilterFunc) Option {
	return func(s *settings) { s.opts.Filter = fn }
}

// WithStrategy selects a built-in strategy by name: partial, exact, rate,
// fuzzy or cel. It is ignored when WithFilter is also given.
func WithStrategy(name string) Option {
	return func(s *settings) { s.strategy = name }
}

// WithMultiple enables multi-select.
func WithMultiple(multiple bool) Option {
	return func(s *settings) { s.opts.Multiple = multiple }
}

// WithDelays overrides the query and key debounce intervals.
func WithDelays(query, keys time.Duration) Option {
	return func(s *settings) {
		s.opts.QueryDelay = query
		s.opts.KeyDelay = keys
	}
}

func WithLogger(log logr.Logger) Option {
	return func(s *settings) { s.opts.Logger = log }
}

// WithID names the instance in logs and events.
func WithID(id string) Option {
	return func(s *settings) { s.opts.ID = id }
}

// New creates a Combobox. Call Close when done with it.
func New(opts ...Option) (*Combobox, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.opts.Filter == nil && s.strategy != "" {
		fn, err := Strategy(s.strategy)
		if err != nil {
			return nil, err
		}
		s.opts.Filter = fn
	}
	if s.opts.QueryDelay < 0 || s.opts.KeyDelay < 0 {
		return nil, fmt.Errorf("debounce delays must not be negative")
	}
	return &Combobox{Machine: combobox.New(s.opts)}, nil
}

// Strategy looks up a built-in filter strategy by name.
func Strategy(name string) (FilterFunc, error) {
	reg, err := filter.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	return reg.Resolve(name)
}

// Strategies lists the built-in strategy names.
func Strategies() []string {
	reg, err := filter.DefaultRegistry()
	if err != nil {
		return nil
	}
	return reg.Names()
}

// Filter runs fn once, outside any state machine. A nil fn uses the
// case-insensitive partial match.
func Filter(fn FilterFunc, candidates []Candidate, query string) ([]Candidate, error) {
	return filter.Apply(fn, candidates, query)
}

// ParseKey maps a key name such as "ArrowDown" or "esc" onto a Key.
func ParseKey(s string) (Key, bool) {
	return combobox.ParseKey(s)
}

// LoadCandidates parses JSON, NDJSON, YAML or TOML candidate data.
func LoadCandidates(input string) ([]Candidate, error) {
	return loader.LoadCandidates(input)
}

// OnSelectionChanged subscribes fn to selection changes only.
func (c *Combobox) OnSelectionChanged(fn func([]Candidate)) *Subscription {
	return c.Subscribe(func(ev Event) {
		if ev.Kind == notify.SelectionChanged {
			fn(ev.Selection)
		}
	})
}
