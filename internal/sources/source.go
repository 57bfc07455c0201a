// Package sources provides the research-provider framework: the Source
// interface every adapter implements, a shared rate-limited HTTP client,
// and the Registry that fans a query out to all providers concurrently.
//
// Each academic database (arXiv, Semantic Scholar, OpenAlex, Crossref,
// PubMed) implements the Source interface in its own subpackage, allowing
// the aggregation facade to search every provider with a unified API while
// keeping each provider an isolated failure domain.
//
// Example usage:
//
//	registry := sources.NewRegistry(logger, metrics)
//	registry.Register(arxiv.New(arxiv.Config{Enabled: true}))
//	registry.Register(openalex.New(openalex.Config{Enabled: true}))
//	results := registry.Search(ctx, "CRISPR gene editing", 20)
package sources

import (
	"context"

	"github.com/scholarly/insights-service/internal/domain"
)

// Source is the contract every research-provider adapter implements.
type Source interface {
	// Search queries the provider for records matching query, returning at
	// most limit canonical results. Implementations must:
	//   - Respect context cancellation and bound their own latency.
	//   - Apply rate limiting as needed.
	//   - Normalize provider payloads to domain.ResearchResult; a payload
	//     that cannot be normalized fails the call.
	//   - Surface failures only as *domain.ProviderError.
	Search(ctx context.Context, query string, limit int) ([]domain.ResearchResult, error)

	// Name returns the human-readable provider name used for logging,
	// metrics, and the Source field of results.
	Name() string

	// Enabled reports whether this source participates in fan-outs. A source
	// may be disabled by configuration or a missing API key.
	Enabled() bool
}

// PerSourceLimit splits an overall result limit across numSources adapters,
// rounding up, with a minimum of 1 per adapter.
func PerSourceLimit(limit, numSources int) int {
	if numSources <= 0 {
		return limit
	}
	if limit <= 0 {
		return 1
	}
	per := (limit + numSources - 1) / numSources
	if per < 1 {
		per = 1
	}
	return per
}
