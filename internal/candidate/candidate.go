// Package candidate defines the selectable item shared by the filter, the
// dropdown state machine and the data source adapters.
package candidate

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Candidate is one selectable item: a currency code and its exchange rate
// against the lookup's base currency. Name is the identity key.
type Candidate struct {
	Name string  `json:"name" yaml:"name" toml:"name"`
	Rate float64 `json:"rate" yaml:"rate" toml:"rate"`
}

// RateString returns the shortest form of the rate, the same text a user
// sees and types against in rate-prefix filtering. Like a browser's number
// formatting it is plain decimal from 1e-6 up to 1e21 and exponent form
// ("1e-7", "1.5e+21") outside that range.
func (c Candidate) RateString() string {
	r := c.Rate
	switch {
	case math.IsNaN(r):
		return "NaN"
	case math.IsInf(r, 1):
		return "Infinity"
	case math.IsInf(r, -1):
		return "-Infinity"
	}
	if abs := math.Abs(r); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(r, 'f', -1, 64)
	}
	// Go pads the exponent to two digits ("1e-07").
	mant, exp, _ := strings.Cut(strconv.FormatFloat(r, 'e', -1, 64), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// SameName reports whether two candidates share an identity.
func (c Candidate) SameName(other Candidate) bool {
	return c.Name == other.Name
}

// IndexOf returns the position of the candidate named name, or -1.
func IndexOf(list []Candidate, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}

// Contains reports whether list holds a candidate with c's name.
func Contains(list []Candidate, c Candidate) bool {
	return IndexOf(list, c.Name) >= 0
}

// Names returns the names of list in order.
func Names(list []Candidate) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].Name
	}
	return out
}

// Clone returns a copy of list that shares no backing array with it.
// A nil list clones to an empty, non-nil slice.
func Clone(list []Candidate) []Candidate {
	out := make([]Candidate, len(list))
	copy(out, list)
	return out
}

// FromRates converts a name to rate mapping, as returned by exchange rate
// lookups, into candidates sorted by name. Blank names are skipped.
func FromRates(rates map[string]float64) []Candidate {
	out := make([]Candidate, 0, len(rates))
	for name, rate := range rates {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Candidate{Name: name, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dedupe drops later candidates whose name was already seen, keeping order.
func Dedupe(list []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(list))
	out := make([]Candidate, 0, len(list))
	for _, c := range list {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
