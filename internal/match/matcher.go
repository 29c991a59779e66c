// Package match pairs up two independently recovered field sets by fuzzy
// key similarity.
package match

import (
	"strings"

	"github.com/labforms/coc-extractor/internal/fields"
)

// DefaultThreshold is the minimum similarity a candidate must exceed to
// count as a match.
const DefaultThreshold = 0.6

// Result pairs one reference record with its best candidate, if any.
// When Matched is false, Candidate is nil and Score is zero.
type Result struct {
	Reference fields.Record  `json:"reference"`
	Candidate *fields.Record `json:"candidate"`
	Score     float64        `json:"score"`
	Matched   bool           `json:"matched"`
}

// Matcher scores reference keys against candidate keys with token-set
// Jaccard similarity.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a matcher with the default threshold.
func NewMatcher() Matcher {
	return Matcher{Threshold: DefaultThreshold}
}

// Tokens splits a key into its lower-cased word tokens. Underscores and
// hyphens count as separators, so "Client Name" and "client_name" produce
// the same set.
func Tokens(key string) map[string]struct{} {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.ToLower(key))
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(norm) {
		set[tok] = struct{}{}
	}
	return set
}

// Similarity returns |A∩B| / |A∪B| over the two keys' token sets.
func Similarity(a, b string) float64 {
	ta, tb := Tokens(a), Tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Match produces one Result per reference record, in reference order. Each
// reference is scored against every candidate and keeps the best one above
// the threshold. Candidates are not consumed, so one candidate may serve
// several references.
func (m Matcher) Match(refs, candidates []fields.Record) []Result {
	results := make([]Result, 0, len(refs))
	for _, ref := range refs {
		best := -1
		bestScore := 0.0
		for i, cand := range candidates {
			if score := Similarity(ref.Key, cand.Key); score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 || bestScore <= m.Threshold {
			results = append(results, Result{Reference: ref})
			continue
		}
		matched := candidates[best]
		results = append(results, Result{
			Reference: ref,
			Candidate: &matched,
			Score:     bestScore,
			Matched:   true,
		})
	}
	return results
}
