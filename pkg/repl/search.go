package repl

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// MatchResult is a candidate with its similarity to the query.
type MatchResult struct {
	Candidate string
	Score     float64
}

// suggestThreshold drops candidates that share too little with the query.
const suggestThreshold = 0.5

// Suggest ranks candidates by similarity to query, best first.
// Only candidates scoring above the threshold are returned.
func Suggest(query string, candidates []string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(candidates) == 0 {
		return nil
	}

	var results []MatchResult
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if score := similarity(query, strings.ToLower(c)); score > suggestThreshold {
			results = append(results, MatchResult{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Candidate
	}
	return out
}

// similarity returns a score between 0 and 1.
func similarity(query, candidate string) float64 {
	if query == candidate {
		return 1.0
	}
	if strings.HasPrefix(candidate, query) {
		return 0.95
	}

	dist := levenshtein.Distance(query, candidate, nil)
	maxLen := len(query)
	if len(candidate) > maxLen {
		maxLen = len(candidate)
	}
	score := 1.0 - float64(dist)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}
