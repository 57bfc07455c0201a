package expert

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/observability"
	"github.com/scholarly/insights-service/internal/sources"
)

// familyLabel is the metrics label for the expert-content fan-out family.
const familyLabel = "expert"

// Federation coordinates concurrent searches across expert-content providers
// and guarantees a floor of results via the curated fallback dataset.
//
// Unlike the research registry, output order is not registration order: the
// combined live and curated set is relevance-filtered against the query,
// sorted by descending relevance score, then truncated to the limit.
type Federation struct {
	mu        sync.RWMutex
	providers []Provider

	curated []domain.ExpertContent

	logger  zerolog.Logger
	metrics *observability.Metrics

	// timeout bounds each individual provider call.
	timeout time.Duration
}

// FederationOption customizes a Federation.
type FederationOption func(*Federation)

// WithProviderTimeout bounds each provider call within a fan-out.
func WithProviderTimeout(d time.Duration) FederationOption {
	return func(f *Federation) { f.timeout = d }
}

// NewFederation creates a federation seeded with the curated fallback items.
// metrics may be nil, in which case no metrics are recorded.
func NewFederation(curated []domain.ExpertContent, logger zerolog.Logger, metrics *observability.Metrics, opts ...FederationOption) *Federation {
	f := &Federation{
		curated: curated,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register appends a provider to the federation. Thread-safe.
func (f *Federation) Register(provider Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers = append(f.providers, provider)
}

// Enabled returns a snapshot of registered providers whose Enabled method
// reports true. Thread-safe.
func (f *Federation) Enabled() []Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()

	enabled := make([]Provider, 0, len(f.providers))
	for _, provider := range f.providers {
		if provider.Enabled() {
			enabled = append(enabled, provider)
		}
	}
	return enabled
}

// providerOutcome holds one provider's settled fan-out result.
type providerOutcome struct {
	items []domain.ExpertContent
	err   error
	took  time.Duration
}

// Search fans the query out to every enabled provider concurrently, merges
// the live results with the curated fallback dataset, filters the combined
// set by query relevance, sorts by descending relevance score, and truncates
// to limit.
//
// Provider failures degrade to zero live items; the curated dataset always
// participates, so Search is non-empty whenever any curated item matches the
// query even during a total provider outage. Search never returns an error.
func (f *Federation) Search(ctx context.Context, query string, limit int) []domain.ExpertContent {
	enabled := f.Enabled()

	perProvider := sources.PerSourceLimit(limit, len(enabled))
	outcomes := make([]providerOutcome, len(enabled))

	var wg sync.WaitGroup
	for i, provider := range enabled {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			start := time.Now()
			defer func() {
				if rec := recover(); rec != nil {
					outcomes[i] = providerOutcome{
						err:  fmt.Errorf("provider panic: %v", rec),
						took: time.Since(start),
					}
				}
			}()

			callCtx := ctx
			if f.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, f.timeout)
				defer cancel()
			}

			if f.metrics != nil {
				f.metrics.SearchesStarted.WithLabelValues(familyLabel, p.Name()).Inc()
			}

			items, err := p.Search(callCtx, query, perProvider)
			outcomes[i] = providerOutcome{items: items, err: err, took: time.Since(start)}
		}(i, provider)
	}
	wg.Wait()

	combined := make([]domain.ExpertContent, 0, limit+len(f.curated))
	succeeded := 0
	for i, provider := range enabled {
		out := outcomes[i]
		if out.err != nil {
			if f.metrics != nil {
				f.metrics.SearchesFailed.WithLabelValues(familyLabel, provider.Name()).Inc()
			}
			f.logger.Warn().
				Err(out.err).
				Str("provider", provider.Name()).
				Str("query", query).
				Dur("duration", out.took).
				Msg("expert provider failed")
			continue
		}

		if f.metrics != nil {
			f.metrics.SearchesCompleted.WithLabelValues(familyLabel, provider.Name()).Inc()
			f.metrics.SearchDuration.WithLabelValues(familyLabel, provider.Name()).Observe(out.took.Seconds())
			f.metrics.ResultsPerSearch.WithLabelValues(familyLabel, provider.Name()).Observe(float64(len(out.items)))
		}
		f.logger.Info().
			Str("provider", provider.Name()).
			Str("query", query).
			Int("results", len(out.items)).
			Dur("duration", out.took).
			Msg("expert provider completed")

		succeeded++
		combined = append(combined, out.items...)
	}

	if succeeded == 0 && f.metrics != nil {
		f.metrics.CuratedFallbackServed.Inc()
	}
	combined = append(combined, f.curated...)

	matched := filterByQuery(combined, query)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RelevanceScore > matched[j].RelevanceScore
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	f.logger.Info().
		Str("query", query).
		Int("providers_total", len(enabled)).
		Int("providers_succeeded", succeeded).
		Int("results_total", len(matched)).
		Msg("expert fan-out completed")

	return matched
}

// filterByQuery keeps items whose title or description contains the query as
// a case-insensitive substring. A blank query matches everything.
func filterByQuery(items []domain.ExpertContent, query string) []domain.ExpertContent {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return items
	}

	matched := make([]domain.ExpertContent, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			matched = append(matched, item)
		}
	}
	return matched
}
