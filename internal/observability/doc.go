// Package observability provides structured logging, Prometheus metrics,
// and request-scoped context helpers for the insights aggregation service.
//
// Logging uses zerolog with JSON output by default and an optional console
// format for development. Metrics cover the source fan-outs, deduplication,
// the expert-content federation, the cache, and the HTTP surface.
//
// Example:
//
//	logger := observability.NewLogger(observability.DefaultLoggingConfig())
//	metrics := observability.NewMetrics("insights")
//	logger.Info().Str("source", "arXiv").Int("results", 12).Msg("search completed")
package observability
