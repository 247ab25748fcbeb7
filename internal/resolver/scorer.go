package resolver

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Scorer measures string similarity on a 0-100 scale. Narrow on purpose so
// the matching library can be swapped without touching resolution logic.
type Scorer interface {
	PartialRatio(a, b string) int
}

type fuzzyScorer struct{}

// NewScorer returns the default partial-ratio scorer
func NewScorer() Scorer {
	return fuzzyScorer{}
}

func (fuzzyScorer) PartialRatio(a, b string) int {
	return fuzzy.PartialRatio(a, b)
}

// BestMatch returns the highest-scoring candidate at or above cutoff.
// Ties keep the earliest candidate, so a sorted slice resolves
// deterministically.
func BestMatch(s Scorer, query string, candidates []string, cutoff int) (string, bool) {
	if query == "" || len(candidates) == 0 {
		return "", false
	}

	best, bestScore := "", 0
	for _, c := range candidates {
		if score := s.PartialRatio(query, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore >= cutoff {
		return best, true
	}
	return "", false
}
