package expert

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly/insights-service/internal/domain"
)

type mockProvider struct {
	name    string
	enabled bool
	items   []domain.ExpertContent
	err     error
	calls   atomic.Int32
}

func (m *mockProvider) Search(ctx context.Context, query string, limit int) ([]domain.ExpertContent, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.items) {
		return m.items[:limit], nil
	}
	return m.items, nil
}

func (m *mockProvider) Name() string  { return m.name }
func (m *mockProvider) Enabled() bool { return m.enabled }

func item(id, title, description string, score float64) domain.ExpertContent {
	return domain.ExpertContent{
		ID:             id,
		Title:          title,
		Description:    description,
		Author:         "Author",
		Date:           "2024-01-01",
		Source:         "Test",
		URL:            "https://example.com/" + id,
		Kind:           domain.KindWebinar,
		RelevanceScore: score,
	}
}

func newFederation(t *testing.T, curated []domain.ExpertContent, providers ...Provider) *Federation {
	t.Helper()
	f := NewFederation(curated, zerolog.Nop(), nil)
	for _, p := range providers {
		f.Register(p)
	}
	return f
}

func TestLoadCurated(t *testing.T) {
	items, err := LoadCurated()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	for _, it := range items {
		assert.NoError(t, domain.ValidateExpertContent(&it))
		assert.Equal(t, "Curated", it.Source)
	}
}

func TestLoadCuratedFile(t *testing.T) {
	t.Run("reads an override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "curated.yaml")
		content := `version: 1
items:
  - id: override-1
    title: "Override Webinar"
    description: "A replacement dataset."
    author: "Ops"
    date: "2025-01-01"
    source: "Curated"
    url: "https://example.com/override"
    kind: webinar
    relevance_score: 50
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		items, err := LoadCuratedFile(path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "override-1", items[0].ID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCuratedFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid item is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "curated.yaml")
		content := `version: 1
items:
  - id: bad-1
    title: "Missing Everything"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := LoadCuratedFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad-1")
	})
}

func TestFederationSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("merges live results with curated fallback", func(t *testing.T) {
		live := &mockProvider{name: "Live", enabled: true, items: []domain.ExpertContent{
			item("live-1", "Gene Editing Webinar", "Live session", 95),
		}}
		curated := []domain.ExpertContent{
			item("cur-1", "Gene Therapy Course", "Curated course", 80),
		}

		got := newFederation(t, curated, live).Search(ctx, "gene", 10)
		require.Len(t, got, 2)
		assert.Equal(t, "live-1", got[0].ID)
		assert.Equal(t, "cur-1", got[1].ID)
	})

	t.Run("total outage still serves curated items", func(t *testing.T) {
		broken := &mockProvider{name: "Broken", enabled: true,
			err: domain.NewProviderError("Broken", 503, "down", nil)}
		curated := []domain.ExpertContent{
			item("cur-1", "Gene Therapy Landscape", "Annual review", 86),
			item("cur-2", "Quantum Fundamentals", "Tutorial", 78),
		}

		got := newFederation(t, curated, broken).Search(ctx, "gene therapy", 10)
		require.Len(t, got, 1)
		assert.Equal(t, "cur-1", got[0].ID)
	})

	t.Run("no providers registered still serves curated items", func(t *testing.T) {
		curated := []domain.ExpertContent{
			item("cur-1", "Anything", "Matches blank", 60),
		}
		got := newFederation(t, curated).Search(ctx, "", 10)
		require.Len(t, got, 1)
	})

	t.Run("filters by case-insensitive substring on title and description", func(t *testing.T) {
		live := &mockProvider{name: "Live", enabled: true, items: []domain.ExpertContent{
			item("by-title", "CRISPR Masterclass", "Editing workshop", 90),
			item("by-desc", "Spring Seminar", "Covers crispr screening", 85),
			item("no-match", "Cloud Computing", "Kubernetes basics", 99),
		}}

		got := newFederation(t, nil, live).Search(ctx, "CRISPR", 10)
		require.Len(t, got, 2)
		assert.Equal(t, "by-title", got[0].ID)
		assert.Equal(t, "by-desc", got[1].ID)
	})

	t.Run("sorts by descending relevance score", func(t *testing.T) {
		live := &mockProvider{name: "Live", enabled: true, items: []domain.ExpertContent{
			item("low", "topic low", "", 40),
			item("high", "topic high", "", 95),
			item("mid", "topic mid", "", 70),
		}}

		got := newFederation(t, nil, live).Search(ctx, "topic", 10)
		require.Len(t, got, 3)
		assert.Equal(t, []string{"high", "mid", "low"}, []string{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("truncates to limit after sorting", func(t *testing.T) {
		live := &mockProvider{name: "Live", enabled: true, items: []domain.ExpertContent{
			item("a", "topic a", "", 90),
			item("b", "topic b", "", 80),
		}}
		curated := []domain.ExpertContent{
			item("c", "topic c", "", 85),
		}

		got := newFederation(t, curated, live).Search(ctx, "topic", 2)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
	})

	t.Run("disabled providers are not called", func(t *testing.T) {
		disabled := &mockProvider{name: "Disabled", enabled: false, items: []domain.ExpertContent{
			item("d-1", "topic", "", 99),
		}}

		got := newFederation(t, nil, disabled).Search(ctx, "topic", 10)
		assert.Empty(t, got)
		assert.Equal(t, int32(0), disabled.calls.Load())
	})

	t.Run("ties keep live results before curated", func(t *testing.T) {
		live := &mockProvider{name: "Live", enabled: true, items: []domain.ExpertContent{
			item("live-1", "topic live", "", 80),
		}}
		curated := []domain.ExpertContent{
			item("cur-1", "topic curated", "", 80),
		}

		got := newFederation(t, curated, live).Search(ctx, "topic", 10)
		require.Len(t, got, 2)
		assert.Equal(t, "live-1", got[0].ID)
	})
}

func TestRankScore(t *testing.T) {
	tests := []struct {
		rank int
		want float64
	}{
		{0, 95},
		{1, 90},
		{5, 70},
		{9, 50},
		{20, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankScore(tt.rank))
	}
}
