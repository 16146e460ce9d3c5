package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// Expression filters candidates with a CEL boolean expression. Each
// candidate is bound as the variables name (string) and rate (double):
//
//	rate > 1.0 && name.startsWith("S")
//	name in ["USD", "EUR"]
//
// Compiled programs are cached per query text.
type Expression struct {
	env *cel.Env

	mu    sync.Mutex
	cache map[string]cel.Program
}

// maxCachedPrograms bounds the program cache; typing produces one entry
// per settled query.
const maxCachedPrograms = 64

// NewExpression creates a CEL filter with the string and math extensions.
func NewExpression() (*Expression, error) {
	env, err := cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("rate", cel.DoubleType),
		celext.Strings(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Expression{env: env, cache: make(map[string]cel.Program)}, nil
}

// Filter implements Func.
func (e *Expression) Filter(candidates []candidate.Candidate, query string) ([]candidate.Candidate, error) {
	prg, err := e.program(query)
	if err != nil {
		return nil, err
	}
	out := make([]candidate.Candidate, 0, len(candidates))
	for _, c := range candidates {
		val, _, err := prg.Eval(map[string]interface{}{
			"name": c.Name,
			"rate": c.Rate,
		})
		if err != nil {
			return nil, fmt.Errorf("eval error for %s: %w", c.Name, err)
		}
		b, ok := val.(types.Bool)
		if !ok {
			return nil, fmt.Errorf("expression must return bool, got %s", val.Type().TypeName())
		}
		if b {
			out = append(out, c)
		}
	}
	return out, nil
}

func (e *Expression) program(query string) (cel.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prg, ok := e.cache[query]; ok {
		return prg, nil
	}
	ast, issues := e.env.Compile(query)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	if len(e.cache) >= maxCachedPrograms {
		e.cache = make(map[string]cel.Program)
	}
	e.cache[query] = prg
	return prg, nil
}
