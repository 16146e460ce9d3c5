package filter

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps strategy names to filter functions. Names are
// case-insensitive. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// DefaultRegistry returns a registry holding every built-in strategy.
func DefaultRegistry() (*Registry, error) {
	r := NewRegistry()
	expr, err := NewExpression()
	if err != nil {
		return nil, err
	}
	for name, fn := range map[string]Func{
		Partial: CaseInsensitivePartial,
		Exact:   CaseInsensitiveExact,
		Rate:    RatePrefix,
		Fuzzy:   FuzzyName,
		CEL:     expr.Filter,
	} {
		if err := r.Register(name, fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a strategy.
func (r *Registry) Register(name string, fn Func) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("strategy name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("strategy %q: nil filter function", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[key] = fn
	return nil
}

// Lookup returns the strategy registered under name. An empty name selects
// the partial-match default when it is registered.
func (r *Registry) Lookup(name string) (Func, bool) {
	key := normalize(name)
	if key == "" {
		key = Partial
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[key]
	return fn, ok
}

// Resolve is Lookup with an error naming the known strategies.
func (r *Registry) Resolve(name string) (Func, error) {
	if fn, ok := r.Lookup(name); ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown filter strategy %q (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
