package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly/insights-service/internal/aggregator"
	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/observability"
	"github.com/scholarly/insights-service/internal/sources"
)

type stubSource struct {
	name      string
	results   []domain.ResearchResult
	err       error
	lastLimit atomic.Int32
}

func (s *stubSource) Search(ctx context.Context, query string, limit int) ([]domain.ResearchResult, error) {
	s.lastLimit.Store(int32(limit))
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSource) Name() string  { return s.name }
func (s *stubSource) Enabled() bool { return true }

func researchResult(id, title string) domain.ResearchResult {
	return domain.ResearchResult{
		ID:              id,
		Title:           title,
		Authors:         []string{"Author Name"},
		Abstract:        domain.NoAbstractSentinel,
		Source:          "Test",
		URL:             "https://example.com/" + id,
		PublicationDate: "2024-01-01",
		Kind:            domain.KindResearch,
		Tags:            []string{"testing"},
	}
}

func curatedItem(id, title string) domain.ExpertContent {
	return domain.ExpertContent{
		ID:             id,
		Title:          title,
		Description:    title,
		Author:         "Author",
		Date:           "2024-01-01",
		Source:         "Curated",
		URL:            "https://example.com/" + id,
		Kind:           domain.KindCourse,
		RelevanceScore: 70,
	}
}

func newTestServer(t *testing.T, curated []domain.ExpertContent, srcs ...sources.Source) *Server {
	t.Helper()

	registry := sources.NewRegistry(zerolog.Nop(), nil)
	for _, src := range srcs {
		registry.Register(src)
	}
	federation := expert.NewFederation(curated, zerolog.Nop(), nil)
	service := aggregator.NewService(registry, federation, nil, zerolog.Nop(), nil)

	return NewServer(Config{Address: "127.0.0.1:0"}, service, zerolog.Nop(), nil, nil)
}

func doRequest(s *Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(newTestServer(t, nil), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSearchHandler(t *testing.T) {
	t.Run("requires q", func(t *testing.T) {
		rec := doRequest(newTestServer(t, nil), "/api/v1/search")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns results and count", func(t *testing.T) {
		server := newTestServer(t, nil, &stubSource{name: "A", results: []domain.ResearchResult{
			researchResult("a1", "First Paper"),
			researchResult("a2", "Second Paper"),
		}})

		rec := doRequest(server, "/api/v1/search?q=crispr")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body struct {
			Results []domain.ResearchResult `json:"results"`
			Count   int                     `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, 2, body.Count)
		require.Len(t, body.Results, 2)
		assert.Equal(t, "a1", body.Results[0].ID)
	})

	t.Run("provider outage is still a 200", func(t *testing.T) {
		server := newTestServer(t, nil, &stubSource{
			name: "Down",
			err:  domain.NewProviderError("Down", 503, "down", nil),
		})

		rec := doRequest(server, "/api/v1/search?q=crispr")
		require.Equal(t, http.StatusOK, rec.Code)

		var body searchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Zero(t, body.Count)
		assert.NotNil(t, body.Results)
	})

	t.Run("clamps the limit", func(t *testing.T) {
		src := &stubSource{name: "A"}
		server := newTestServer(t, nil, src)

		doRequest(server, "/api/v1/search?q=x&limit=5000")
		assert.Equal(t, int32(100), src.lastLimit.Load())

		doRequest(server, "/api/v1/search?q=x&limit=-3")
		assert.Equal(t, int32(1), src.lastLimit.Load())

		doRequest(server, "/api/v1/search?q=x&limit=abc")
		assert.Equal(t, int32(20), src.lastLimit.Load())
	})
}

func TestExpertContentHandler(t *testing.T) {
	t.Run("requires q", func(t *testing.T) {
		rec := doRequest(newTestServer(t, nil), "/api/v1/expert-content")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("serves curated fallback without any providers", func(t *testing.T) {
		server := newTestServer(t, []domain.ExpertContent{
			curatedItem("cur-1", "Gene Therapy Course"),
		})

		rec := doRequest(server, "/api/v1/expert-content?q=gene+therapy")
		require.Equal(t, http.StatusOK, rec.Code)

		var body expertContentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "cur-1", body.Results[0].ID)
	})
}

func TestInsightsHandler(t *testing.T) {
	t.Run("requires title", func(t *testing.T) {
		rec := doRequest(newTestServer(t, nil), "/api/v1/insights")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns the composite insights", func(t *testing.T) {
		server := newTestServer(t,
			[]domain.ExpertContent{curatedItem("cur-1", "Gene Therapy CRISPR Course")},
			&stubSource{name: "A", results: []domain.ResearchResult{
				researchResult("a1", "Therapeutic Genome Editing"),
			}},
		)

		rec := doRequest(server, "/api/v1/insights?title=Gene+Therapy&keywords=CRISPR,")
		require.Equal(t, http.StatusOK, rec.Code)

		var body domain.Insights
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Papers, 1)
		require.Len(t, body.ExpertContent, 1)
		assert.Contains(t, body.RelatedTopics, "therapeutic")
		assert.Equal(t, []string{"Author Name"}, body.KeyAuthors)
	})

	t.Run("total outage degrades to empty collections", func(t *testing.T) {
		server := newTestServer(t, nil, &stubSource{
			name: "Down",
			err:  domain.NewProviderError("Down", 503, "down", nil),
		})

		rec := doRequest(server, "/api/v1/insights?title=Anything")
		require.Equal(t, http.StatusOK, rec.Code)

		var body domain.Insights
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Empty(t, body.Papers)
		assert.Empty(t, body.ExpertContent)
		assert.Empty(t, body.RelatedTopics)
		assert.Empty(t, body.KeyAuthors)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsWith("insights", reg)

	registry := sources.NewRegistry(zerolog.Nop(), metrics)
	federation := expert.NewFederation(nil, zerolog.Nop(), metrics)
	service := aggregator.NewService(registry, federation, nil, zerolog.Nop(), metrics)
	server := NewServer(
		Config{Address: "127.0.0.1:0", MetricsPath: "/metrics"},
		service, zerolog.Nop(), metrics,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)

	doRequest(server, "/api/v1/search?q=anything")

	rec := doRequest(server, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "insights_aggregations_total")
}

func TestRequestIDEcho(t *testing.T) {
	server := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 20},
		{"abc", 20},
		{"0", 1},
		{"-5", 1},
		{"50", 50},
		{"100", 100},
		{"101", 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampLimit(tt.raw), "raw %q", tt.raw)
	}
}

func TestSplitKeywords(t *testing.T) {
	assert.Nil(t, splitKeywords(""))
	assert.Equal(t, []string{"a", "b"}, splitKeywords("a, b,,  "))
}
