package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/observability"
)

// familyLabel is the metrics label for the research fan-out family.
const familyLabel = "research"

// Registry holds the ordered set of research sources and coordinates
// concurrent fan-out searches across them.
//
// Registration order is significant: fan-out output is the concatenation of
// successful sources' results in registration order, independent of real
// completion order, so downstream dedup and tests stay deterministic.
type Registry struct {
	mu      sync.RWMutex
	sources []Source

	logger  zerolog.Logger
	metrics *observability.Metrics

	// timeout bounds each individual source call. Zero means the caller's
	// context is the only bound.
	timeout time.Duration
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithSourceTimeout bounds each source call within a fan-out. A source that
// exceeds the budget degrades to a failure exactly like a network error.
func WithSourceTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.timeout = d }
}

// NewRegistry creates an empty source registry. metrics may be nil, in which
// case no metrics are recorded.
func NewRegistry(logger zerolog.Logger, metrics *observability.Metrics, opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a source to the registry. Sources searched by the fan-out
// appear in output in the order they were registered. Thread-safe.
func (r *Registry) Register(source Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

// Enabled returns a snapshot of registered sources whose Enabled method
// reports true, in registration order. Thread-safe.
func (r *Registry) Enabled() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]Source, 0, len(r.sources))
	for _, source := range r.sources {
		if source.Enabled() {
			enabled = append(enabled, source)
		}
	}
	return enabled
}

// sourceOutcome holds one source's settled fan-out result.
type sourceOutcome struct {
	results []domain.ResearchResult
	err     error
	took    time.Duration
}

// Search fans the query out to every enabled source concurrently and returns
// the union of all successful sources' results in registration order.
//
// The overall limit is split across sources as ceil(limit/n), minimum 1.
// Individual failures are logged and contribute zero results; if every
// source fails, Search returns an empty slice, never an error. The join
// waits for all sources to settle, so one slow provider never fails the
// batch, it only delays it up to the per-source timeout.
func (r *Registry) Search(ctx context.Context, query string, limit int) []domain.ResearchResult {
	enabled := r.Enabled()
	if len(enabled) == 0 {
		r.logger.Warn().Str("query", query).Msg("no enabled research sources")
		return []domain.ResearchResult{}
	}

	perSource := PerSourceLimit(limit, len(enabled))
	outcomes := make([]sourceOutcome, len(enabled))

	var wg sync.WaitGroup
	for i, source := range enabled {
		wg.Add(1)
		go func(i int, s Source) {
			defer wg.Done()

			start := time.Now()
			defer func() {
				if rec := recover(); rec != nil {
					outcomes[i] = sourceOutcome{
						err:  fmt.Errorf("source panic: %v", rec),
						took: time.Since(start),
					}
				}
			}()

			callCtx := ctx
			if r.timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, r.timeout)
				defer cancel()
			}

			if r.metrics != nil {
				r.metrics.SearchesStarted.WithLabelValues(familyLabel, s.Name()).Inc()
			}

			results, err := s.Search(callCtx, query, perSource)
			outcomes[i] = sourceOutcome{results: results, err: err, took: time.Since(start)}
		}(i, source)
	}
	wg.Wait()

	merged := make([]domain.ResearchResult, 0, limit)
	succeeded := 0
	for i, source := range enabled {
		out := outcomes[i]
		if out.err != nil {
			if r.metrics != nil {
				r.metrics.SearchesFailed.WithLabelValues(familyLabel, source.Name()).Inc()
			}
			r.logger.Warn().
				Err(out.err).
				Str("source", source.Name()).
				Str("query", query).
				Dur("duration", out.took).
				Msg("research source failed")
			continue
		}

		if r.metrics != nil {
			r.metrics.SearchesCompleted.WithLabelValues(familyLabel, source.Name()).Inc()
			r.metrics.SearchDuration.WithLabelValues(familyLabel, source.Name()).Observe(out.took.Seconds())
			r.metrics.ResultsPerSearch.WithLabelValues(familyLabel, source.Name()).Observe(float64(len(out.results)))
		}
		r.logger.Info().
			Str("source", source.Name()).
			Str("query", query).
			Int("results", len(out.results)).
			Dur("duration", out.took).
			Msg("research source completed")

		succeeded++
		merged = append(merged, out.results...)
	}

	r.logger.Info().
		Str("query", query).
		Int("sources_total", len(enabled)).
		Int("sources_succeeded", succeeded).
		Int("results_total", len(merged)).
		Msg("research fan-out completed")

	return merged
}
