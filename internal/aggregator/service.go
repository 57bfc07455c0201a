// Package aggregator exposes the service facade that composes the research
// fan-out, deduplication, insight extraction, and expert-content federation
// into the three public operations.
//
// The facade is the degradation boundary: provider failures are absorbed
// upstream, and any internal defect that still surfaces here is recovered
// and converted into an empty result. Callers never see a panic and never
// see an error for upstream outages.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/scholarly/insights-service/internal/dedup"
	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/insights"
	"github.com/scholarly/insights-service/internal/observability"
	"github.com/scholarly/insights-service/internal/sources"
)

// DefaultLimit applies when a caller passes a non-positive limit.
const DefaultLimit = 20

// Operation labels for aggregation metrics.
const (
	opSearch   = "search"
	opExpert   = "expert_content"
	opInsights = "insights"
)

// Service is the aggregation facade.
type Service struct {
	registry   *sources.Registry
	federation *expert.Federation
	cache      *Cache

	logger  zerolog.Logger
	metrics *observability.Metrics

	// extract is swapped in tests to exercise the defect-recovery path.
	extract func([]domain.ResearchResult) ([]string, []string)
}

// NewService creates the facade. cache may be nil to disable memoization;
// metrics may be nil.
func NewService(registry *sources.Registry, federation *expert.Federation, cache *Cache, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		registry:   registry,
		federation: federation,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
		extract:    insights.Extract,
	}
}

// Search runs the research pipeline: concurrent fan-out across all enabled
// sources followed by title deduplication. Provider failures degrade to
// fewer results; a total outage yields an empty slice and a nil error. The
// only error returned is domain.ErrInvalidInput for a blank query.
func (s *Service) Search(ctx context.Context, query string, limit int) (results []domain.ResearchResult, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, logger := s.beginRun(ctx, opSearch, query)
	defer s.observe(opSearch, time.Now())
	defer func() {
		if rec := recover(); rec != nil {
			s.fault(logger, opSearch, rec)
			results, err = []domain.ResearchResult{}, nil
		}
	}()

	results = s.searchResearch(ctx, query, limit)
	logger.Info().Int("results", len(results)).Msg("search completed")
	return results, nil
}

// SearchExpertContent runs the expert-content pipeline: provider federation
// with the curated fallback merged in, relevance-filtered and sorted. The
// only error returned is domain.ErrInvalidInput for a blank query.
func (s *Service) SearchExpertContent(ctx context.Context, query string, limit int) (items []domain.ExpertContent, err error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, logger := s.beginRun(ctx, opExpert, query)
	defer s.observe(opExpert, time.Now())
	defer func() {
		if rec := recover(); rec != nil {
			s.fault(logger, opExpert, rec)
			items, err = []domain.ExpertContent{}, nil
		}
	}()

	items = s.searchExpert(ctx, query, limit)
	logger.Info().Int("results", len(items)).Msg("expert content search completed")
	return items, nil
}

// GetInsights runs both pipelines concurrently for a combined query built
// from the title and keywords, then derives related topics and key authors
// from the deduplicated research corpus.
//
// Any internal defect in either pipeline or the extractor is recovered here:
// the caller receives the all-empty Insights value and a nil error. The only
// error returned is domain.ErrInvalidInput for a blank title.
func (s *Service) GetInsights(ctx context.Context, title string, keywords []string) (out domain.Insights, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Insights{}, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
	}
	query := buildQuery(title, keywords)

	ctx, logger := s.beginRun(ctx, opInsights, query)
	defer s.observe(opInsights, time.Now())
	defer func() {
		if rec := recover(); rec != nil {
			s.fault(logger, opInsights, rec)
			out, err = domain.EmptyInsights(), nil
		}
	}()

	var (
		papers  []domain.ResearchResult
		content []domain.ExpertContent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverToError(&err)
		papers = s.searchResearch(gctx, query, DefaultLimit)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverToError(&err)
		content = s.searchExpert(gctx, query, DefaultLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.fault(logger, opInsights, err)
		return domain.EmptyInsights(), nil
	}

	topics, authors := s.extract(papers)

	logger.Info().
		Int("papers", len(papers)).
		Int("expert_content", len(content)).
		Int("related_topics", len(topics)).
		Int("key_authors", len(authors)).
		Msg("insights aggregation completed")

	return domain.Insights{
		Papers:        papers,
		ExpertContent: content,
		RelatedTopics: topics,
		KeyAuthors:    authors,
	}, nil
}

// searchResearch runs the fan-out plus dedup, through the cache when one is
// configured.
func (s *Service) searchResearch(ctx context.Context, query string, limit int) []domain.ResearchResult {
	fetch := func() []domain.ResearchResult {
		merged := s.registry.Search(ctx, query, limit)
		deduped := dedup.Dedup(merged)
		if removed := len(merged) - len(deduped); removed > 0 && s.metrics != nil {
			s.metrics.DuplicatesRemoved.Add(float64(removed))
		}
		return deduped
	}
	if s.cache != nil {
		return s.cache.Research(query, limit, fetch)
	}
	return fetch()
}

// searchExpert runs the federation, through the cache when one is configured.
func (s *Service) searchExpert(ctx context.Context, query string, limit int) []domain.ExpertContent {
	fetch := func() []domain.ExpertContent {
		return s.federation.Search(ctx, query, limit)
	}
	if s.cache != nil {
		return s.cache.Expert(query, limit, fetch)
	}
	return fetch()
}

// beginRun assigns an aggregation-run ID, stores it in the context, and
// returns a logger annotated with the run metadata.
func (s *Service) beginRun(ctx context.Context, operation, query string) (context.Context, zerolog.Logger) {
	runID := uuid.NewString()
	ctx = observability.WithAggregationID(ctx, runID)

	logger := s.logger.With().
		Str("aggregation_id", runID).
		Str("operation", operation).
		Str("query", query).
		Logger()

	if s.metrics != nil {
		s.metrics.AggregationsTotal.WithLabelValues(operation).Inc()
	}
	return ctx, logger
}

// observe records the end-to-end operation duration.
func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.AggregationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// fault logs a recovered internal defect and counts it.
func (s *Service) fault(logger zerolog.Logger, operation string, cause any) {
	if s.metrics != nil {
		s.metrics.InternalFaults.Inc()
	}
	logger.Error().
		Str("operation", operation).
		Interface("cause", cause).
		Msg("recovered internal fault, returning degraded result")
}

// recoverToError converts a goroutine panic into an ordinary error so the
// errgroup join can report it.
func recoverToError(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("internal fault: %v", rec)
	}
}

// buildQuery joins the title and non-blank keywords into one search query.
func buildQuery(title string, keywords []string) string {
	parts := make([]string, 0, 1+len(keywords))
	parts = append(parts, title)
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}
