// Package notify is the notification port of a combobox instance: typed
// events delivered synchronously to explicit subscriptions.
package notify

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// Kind identifies an event type.
type Kind string

const (
	QueryChanged     Kind = "query-changed"
	ResultsChanged   Kind = "results-changed"
	OpenChanged      Kind = "open-changed"
	SelectionChanged Kind = "selection-changed"
	FilterFailed     Kind = "filter-failed"
)

// Event carries the state relevant to its Kind. Slices are copies owned by
// the receiver.
type Event struct {
	Kind      Kind
	Source    string
	Query     string
	Open      bool
	Results   []candidate.Candidate
	Selection []candidate.Candidate
	Err       error
}

func (e Event) String() string {
	switch e.Kind {
	case QueryChanged:
		return fmt.Sprintf("%s %q", e.Kind, e.Query)
	case ResultsChanged:
		return fmt.Sprintf("%s %v", e.Kind, candidate.Names(e.Results))
	case OpenChanged:
		return fmt.Sprintf("%s %t", e.Kind, e.Open)
	case SelectionChanged:
		return fmt.Sprintf("%s %v", e.Kind, candidate.Names(e.Selection))
	case FilterFailed:
		return fmt.Sprintf("%s %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Handler receives events.
type Handler func(Event)

// Port fans events out to subscribers in subscription order.
type Port struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscriber
	log    logr.Logger
}

type subscriber struct {
	id uint64
	fn Handler
}

// NewPort returns an empty Port. Subscriber panics are logged to log.
func NewPort(log logr.Logger) *Port {
	return &Port{log: log}
}

// Subscribe registers fn. A nil fn returns an inert Subscription.
func (p *Port) Subscribe(fn Handler) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	p.subs = append(p.subs, subscriber{id: p.nextID, fn: fn})
	return &Subscription{port: p, id: p.nextID}
}

// Publish delivers each event to every current subscriber, event by event.
// It must not be called while holding the owner's state lock.
func (p *Port) Publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	for _, ev := range events {
		p.mu.RLock()
		subs := make([]subscriber, len(p.subs))
		copy(subs, p.subs)
		p.mu.RUnlock()

		for _, s := range subs {
			p.deliver(s, ev)
		}
	}
}

// Len returns the number of active subscriptions.
func (p *Port) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// Reset drops every subscription.
func (p *Port) Reset() {
	p.mu.Lock()
	p.subs = nil
	p.mu.Unlock()
}

func (p *Port) deliver(s subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error(fmt.Errorf("panic: %v", r), "subscriber panicked", "event", string(ev.Kind), "subscription", s.id)
		}
	}()
	s.fn(ev)
}

func (p *Port) remove(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, s := range p.subs {
		if s.id == id {
			p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
			return
		}
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	port *Port
	id   uint64
	once sync.Once
}

// Unsubscribe stops delivery. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.port == nil {
		return
	}
	s.once.Do(func() { s.port.remove(s.id) })
}
