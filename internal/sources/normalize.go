package sources

import (
	"fmt"
	"strings"

	"github.com/scholarly/insights-service/internal/domain"
)

// NormalizeWhitespace trims and collapses runs of whitespace (including
// newlines) into single spaces. Several providers pad titles and abstracts
// with layout whitespace.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// FallbackAbstract returns the cleaned abstract, or the canonical sentinel
// when the provider supplied none.
func FallbackAbstract(s string) string {
	cleaned := NormalizeWhitespace(s)
	if cleaned == "" {
		return domain.NoAbstractSentinel
	}
	return cleaned
}

// DateFromYear normalizes a year-only publication date to YYYY-01-01.
// Returns empty for non-positive years.
func DateFromYear(year int) string {
	if year <= 0 {
		return ""
	}
	return fmt.Sprintf("%04d-01-01", year)
}

// BaseTags returns the minimal tag set for a result: the originating query
// term plus any provider-supplied categories, skipping empties.
func BaseTags(query string, extra ...string) []string {
	tags := make([]string, 0, 1+len(extra))
	tags = append(tags, query)
	for _, tag := range extra {
		if cleaned := NormalizeWhitespace(tag); cleaned != "" {
			tags = append(tags, cleaned)
		}
	}
	return tags
}
