package filter

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/oakwood-commons/fxpick/internal/candidate"
)

// FuzzyName ranks candidates whose name contains the query as a
// subsequence, best match first. Equal scores keep input order so repeated
// calls return the same sequence.
func FuzzyName(candidates []candidate.Candidate, query string) ([]candidate.Candidate, error) {
	targets := make([]string, len(candidates))
	for i, c := range candidates {
		targets[i] = strings.ToLower(c.Name)
	}
	matches := fuzzy.Find(strings.ToLower(query), targets)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})
	out := make([]candidate.Candidate, 0, len(matches))
	for _, m := range matches {
		if m.Index >= 0 && m.Index < len(candidates) {
			out = append(out, candidates[m.Index])
		}
	}
	return out, nil
}
