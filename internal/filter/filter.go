// Package filter holds the candidate filter contract and the built-in
// matching strategies.
//
// A strategy is any Func: given the full candidate list and the query it
// returns the ordered subset to show. Strategies must be deterministic and
// must not mutate their input. Apply is the only entry point the dropdown
// uses; it shields the caller from misbehaving strategies.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// Func filters candidates against a query.
type Func func(candidates []candidate.Candidate, query string) ([]candidate.Candidate, error)

// Strategy names understood by the default registry.
const (
	Partial = "partial"
	Exact   = "exact"
	Rate    = "rate"
	Fuzzy   = "fuzzy"
	CEL     = "cel"
)

// ErrStrategy classifies every failure raised by a strategy.
var ErrStrategy = errors.New("filter strategy failed")

// StrategyError reports a failed filter pass for one query.
type StrategyError struct {
	Query string
	Err   error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("filter %q: %v", e.Query, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStrategy) true for any StrategyError.
func (e *StrategyError) Is(target error) bool { return target == ErrStrategy }

// Apply runs fn over a private copy of candidates. Returned errors and
// panics both come back as *StrategyError with a nil result.
func Apply(fn Func, candidates []candidate.Candidate, query string) (out []candidate.Candidate, err error) {
	if fn == nil {
		fn = CaseInsensitivePartial
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &StrategyError{Query: query, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	out, err = fn(candidate.Clone(candidates), query)
	if err != nil {
		var se *StrategyError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, &StrategyError{Query: query, Err: err}
	}
	if out == nil {
		out = []candidate.Candidate{}
	}
	return out, nil
}

// Infallible adapts a plain matching function to Func.
func Infallible(fn func([]candidate.Candidate, string) []candidate.Candidate) Func {
	return func(candidates []candidate.Candidate, query string) ([]candidate.Candidate, error) {
		return fn(candidates, query), nil
	}
}

// Where builds a Func that keeps candidates matching the predicate, in input
// order.
func Where(match func(c candidate.Candidate, query string) bool) Func {
	return func(candidates []candidate.Candidate, query string) ([]candidate.Candidate, error) {
		out := make([]candidate.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if match(c, query) {
				out = append(out, c)
			}
		}
		return out, nil
	}
}

// CaseInsensitivePartial keeps candidates whose name contains the query,
// ignoring case. It is the default strategy.
var CaseInsensitivePartial = Where(func(c candidate.Candidate, query string) bool {
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(query))
})

// CaseInsensitiveExact keeps candidates whose name equals the query,
// ignoring case.
var CaseInsensitiveExact = Where(func(c candidate.Candidate, query string) bool {
	return strings.EqualFold(c.Name, query)
})

// RatePrefix keeps candidates whose rate, written as the user sees it,
// starts with the query: "0.7" matches 0.73 but not 1.07.
var RatePrefix = Where(func(c candidate.Candidate, query string) bool {
	return strings.HasPrefix(c.RateString(), query)
})
