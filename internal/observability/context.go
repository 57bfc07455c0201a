package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	aggregationIDKey contextKey = "aggregation_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithAggregationID adds an aggregation-run ID to the context. One ID covers
// the whole fan-out for a single caller request, so per-source log lines can
// be correlated.
func WithAggregationID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, aggregationIDKey, runID)
}

// AggregationIDFromContext retrieves the aggregation-run ID from context.
// Returns empty string if not present.
func AggregationIDFromContext(ctx context.Context) string {
	if v := ctx.Value(aggregationIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
