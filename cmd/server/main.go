// Package main provides the entry point for the insights aggregation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/scholarly/insights-service/internal/aggregator"
	"github.com/scholarly/insights-service/internal/config"
	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/expert/eventbrite"
	"github.com/scholarly/insights-service/internal/expert/openlearn"
	"github.com/scholarly/insights-service/internal/expert/youtube"
	"github.com/scholarly/insights-service/internal/observability"
	httpserver "github.com/scholarly/insights-service/internal/server/http"
	"github.com/scholarly/insights-service/internal/sources"
	"github.com/scholarly/insights-service/internal/sources/arxiv"
	"github.com/scholarly/insights-service/internal/sources/crossref"
	"github.com/scholarly/insights-service/internal/sources/openalex"
	"github.com/scholarly/insights-service/internal/sources/pubmed"
	"github.com/scholarly/insights-service/internal/sources/semanticscholar"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("insights-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics registration and handler.
	var (
		metrics        *observability.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("insights")
		metricsHandler = promhttp.Handler()
	}

	// Research source fan-out.
	registry := buildRegistry(cfg, logger, metrics)
	logger.Info().Int("sources", len(registry.Enabled())).Msg("research sources registered")

	// Expert-content federation with curated fallback.
	curated, err := loadCurated(cfg)
	if err != nil {
		return fmt.Errorf("load curated dataset: %w", err)
	}
	federation := buildFederation(cfg, curated, logger, metrics)
	logger.Info().
		Int("providers", len(federation.Enabled())).
		Int("curated_items", len(curated)).
		Msg("expert providers registered")

	// Aggregation facade with optional memoizing cache.
	var cache *aggregator.Cache
	if cfg.Cache.Enabled {
		cache = aggregator.NewCache(cfg.Cache.Size, cfg.Cache.TTL, metrics)
	}
	service := aggregator.NewService(registry, federation, cache, logger, metrics)

	// HTTP server.
	httpCfg := httpserver.Config{
		Address:         cfg.Server.HTTPAddress(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if cfg.Metrics.Enabled {
		httpCfg.MetricsPath = cfg.Metrics.Path
	}
	httpSrv := httpserver.NewServer(httpCfg, service, logger, metrics, metricsHandler)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().Str("http_address", httpCfg.Address).Msg("insights-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down insights-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("insights-service shutdown complete")
	return nil
}

// buildRegistry wires every configured research source into the fan-out
// registry. Disabled sources are registered too; the registry skips them at
// search time, and a config change plus restart re-enables them.
func buildRegistry(cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) *sources.Registry {
	registry := sources.NewRegistry(logger, metrics,
		sources.WithSourceTimeout(cfg.Aggregation.SourceTimeout))

	rs := cfg.ResearchSources
	registry.Register(arxiv.New(arxiv.Config{
		BaseURL:   rs.ArXiv.BaseURL,
		Timeout:   rs.ArXiv.Timeout,
		RateLimit: rs.ArXiv.RateLimit,
		BurstSize: rs.ArXiv.BurstSize,
		Enabled:   rs.ArXiv.Enabled,
	}))
	registry.Register(semanticscholar.New(semanticscholar.Config{
		BaseURL:   rs.SemanticScholar.BaseURL,
		APIKey:    rs.SemanticScholar.APIKey,
		Timeout:   rs.SemanticScholar.Timeout,
		RateLimit: rs.SemanticScholar.RateLimit,
		BurstSize: rs.SemanticScholar.BurstSize,
		Enabled:   rs.SemanticScholar.Enabled,
	}))
	registry.Register(openalex.New(openalex.Config{
		BaseURL:   rs.OpenAlex.BaseURL,
		Email:     rs.OpenAlex.Email,
		Timeout:   rs.OpenAlex.Timeout,
		RateLimit: rs.OpenAlex.RateLimit,
		BurstSize: rs.OpenAlex.BurstSize,
		Enabled:   rs.OpenAlex.Enabled,
	}))
	registry.Register(crossref.New(crossref.Config{
		BaseURL:   rs.Crossref.BaseURL,
		Email:     rs.Crossref.Email,
		Timeout:   rs.Crossref.Timeout,
		RateLimit: rs.Crossref.RateLimit,
		BurstSize: rs.Crossref.BurstSize,
		Enabled:   rs.Crossref.Enabled,
	}))
	registry.Register(pubmed.New(pubmed.Config{
		BaseURL:   rs.PubMed.BaseURL,
		APIKey:    rs.PubMed.APIKey,
		Timeout:   rs.PubMed.Timeout,
		RateLimit: rs.PubMed.RateLimit,
		BurstSize: rs.PubMed.BurstSize,
		Enabled:   rs.PubMed.Enabled,
	}))

	return registry
}

// buildFederation wires every configured expert-content provider into the
// federation.
func buildFederation(cfg *config.Config, curated []domain.ExpertContent, logger zerolog.Logger, metrics *observability.Metrics) *expert.Federation {
	federation := expert.NewFederation(curated, logger, metrics,
		expert.WithProviderTimeout(cfg.Aggregation.SourceTimeout))

	es := cfg.ExpertSources
	federation.Register(youtube.New(youtube.Config{
		BaseURL:   es.YouTube.BaseURL,
		APIKey:    es.YouTube.APIKey,
		Timeout:   es.YouTube.Timeout,
		RateLimit: es.YouTube.RateLimit,
		BurstSize: es.YouTube.BurstSize,
		Enabled:   es.YouTube.Enabled,
	}))
	federation.Register(eventbrite.New(eventbrite.Config{
		BaseURL:   es.Eventbrite.BaseURL,
		Token:     es.Eventbrite.APIKey,
		Timeout:   es.Eventbrite.Timeout,
		RateLimit: es.Eventbrite.RateLimit,
		BurstSize: es.Eventbrite.BurstSize,
		Enabled:   es.Eventbrite.Enabled,
	}))
	federation.Register(openlearn.New(openlearn.Config{
		BaseURL:   es.OpenLearn.BaseURL,
		Timeout:   es.OpenLearn.Timeout,
		RateLimit: es.OpenLearn.RateLimit,
		BurstSize: es.OpenLearn.BurstSize,
		Enabled:   es.OpenLearn.Enabled,
	}))

	return federation
}

// loadCurated loads the curated fallback dataset: an external file when one
// is configured, the embedded copy otherwise.
func loadCurated(cfg *config.Config) ([]domain.ExpertContent, error) {
	if path := cfg.ExpertSources.CuratedPath; path != "" {
		return expert.LoadCuratedFile(path)
	}
	return expert.LoadCurated()
}
