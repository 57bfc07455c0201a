// Package dedup collapses near-duplicate research results collected from
// different providers into one canonical entry.
//
// Deduplication is exact-key: a result's key is its title lower-cased with
// all non-alphanumeric characters stripped. Titles differing by punctuation
// or case collapse; titles differing by wording do not. Fuzzy similarity
// matching is deliberately out of scope.
package dedup

import (
	"strings"
	"unicode"

	"github.com/scholarly/insights-service/internal/domain"
)

// Key normalizes a title into its dedup key: lower-cased with every
// non-alphanumeric rune removed.
func Key(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dedup removes results whose title key has been seen earlier in the slice,
// preserving first-seen order. The input is not modified.
func Dedup(results []domain.ResearchResult) []domain.ResearchResult {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]domain.ResearchResult, 0, len(results))

	for _, result := range results {
		key := Key(result.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, result)
	}
	return deduped
}

// Removed reports how many entries Dedup would drop from results.
func Removed(results []domain.ResearchResult) int {
	return len(results) - len(Dedup(results))
}
