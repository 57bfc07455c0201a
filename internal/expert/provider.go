// Package expert federates educational and expert content (courses, webinars,
// workshops, conference talks) from a second family of providers, mirroring
// the research fan-out.
//
// Two rules distinguish this pipeline from the research one: a curated
// fallback dataset is unconditionally merged into the live results so a total
// provider outage never produces an empty panel, and the combined set is
// relevance-filtered and sorted before truncation.
package expert

import (
	"context"

	"github.com/scholarly/insights-service/internal/domain"
)

// Provider is the contract every expert-content adapter implements.
type Provider interface {
	// Search queries the platform for content matching query, returning at
	// most limit canonical items. The same boundary rules as research
	// sources apply: canonical shapes only, failures surface solely as
	// *domain.ProviderError, and context cancellation is respected.
	Search(ctx context.Context, query string, limit int) ([]domain.ExpertContent, error)

	// Name returns the human-readable platform name.
	Name() string

	// Enabled reports whether this provider participates in fan-outs.
	Enabled() bool
}

// RankScore converts a provider result rank (0-based) into a relevance score
// for platforms that report ordering but no numeric rank of their own.
// Scores start at 95 and fall by 5 per rank, bottoming out at 50.
func RankScore(rank int) float64 {
	score := 95.0 - float64(rank)*5
	if score < 50 {
		return 50
	}
	return score
}
