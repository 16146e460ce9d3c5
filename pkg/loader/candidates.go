package loader

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// RatesKey is the field exchange rate APIs nest the name to rate map under.
const RatesKey = "rates"

// LoadCandidates parses input and converts it with Candidates.
func LoadCandidates(input string) ([]candidate.Candidate, error) {
	root, err := LoadRoot(input)
	if err != nil {
		return nil, err
	}
	return Candidates(root)
}

// LoadCandidatesFile reads path and converts it with Candidates.
func LoadCandidatesFile(path string) ([]candidate.Candidate, error) {
	root, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := Candidates(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// Candidates converts a parsed document into candidates. Accepted shapes:
//
//	{"USD": 0.73, "EUR": 0.68}                 name to rate map, sorted by name
//	{"rates": {"USD": 0.73}}                   lookup response, sorted by name
//	[{"name": "USD", "rate": 0.73}, ...]       records, input order kept
//	{"rates": [{"name": "USD", "rate": 0.73}]} records under "rates" (TOML [[rates]])
//
// Duplicate names keep their first occurrence.
func Candidates(root any) ([]candidate.Candidate, error) {
	switch v := root.(type) {
	case map[string]any:
		if nested, ok := v[RatesKey]; ok {
			return Candidates(nested)
		}
		rates := make(map[string]float64, len(v))
		for name, raw := range v {
			rate, err := toRate(raw)
			if err != nil {
				return nil, fmt.Errorf("candidate %q: %w", name, err)
			}
			rates[name] = rate
		}
		return candidate.FromRates(rates), nil
	case []any:
		out := make([]candidate.Candidate, 0, len(v))
		for i, item := range v {
			c, err := record(item)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			out = append(out, c)
		}
		return candidate.Dedupe(out), nil
	case nil:
		return []candidate.Candidate{}, nil
	default:
		return nil, fmt.Errorf("unsupported candidate document of type %T", root)
	}
}

func record(item any) (candidate.Candidate, error) {
	m, ok := item.(map[string]any)
	if !ok {
		return candidate.Candidate{}, fmt.Errorf("expected an object with name and rate, got %T", item)
	}
	var name string
	for _, key := range []string{"name", "code"} {
		if s, ok := m[key].(string); ok {
			name = strings.TrimSpace(s)
			break
		}
	}
	if name == "" {
		return candidate.Candidate{}, fmt.Errorf("missing name")
	}
	raw, ok := m["rate"]
	if !ok {
		return candidate.Candidate{}, fmt.Errorf("candidate %q: missing rate", name)
	}
	rate, err := toRate(raw)
	if err != nil {
		return candidate.Candidate{}, fmt.Errorf("candidate %q: %w", name, err)
	}
	return candidate.Candidate{Name: name, Rate: rate}, nil
}

func toRate(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("rate %q is not a number", v)
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("rate %q is not a number", v)
		}
		f = n
	default:
		return 0, fmt.Errorf("rate %v is not a number", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("rate %v is not finite", raw)
	}
	return f, nil
}

