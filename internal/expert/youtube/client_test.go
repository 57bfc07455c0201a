package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/sources"
)

const sampleResponse = `{
  "items": [
    {
      "id": {"kind": "youtube#video", "videoId": "abc123"},
      "snippet": {
        "title": "CRISPR  Explained ",
        "description": "A deep dive into gene editing.",
        "channelTitle": "SciChannel",
        "publishedAt": "2024-03-10T09:00:00Z"
      }
    },
    {
      "id": {"kind": "youtube#video", "videoId": "def456"},
      "snippet": {
        "title": "Gene Therapy Webinar",
        "description": "",
        "channelTitle": "",
        "publishedAt": "2023-11-02T12:30:00Z"
      }
    },
    {
      "id": {"kind": "youtube#channel"},
      "snippet": {"title": "Not a video"}
    }
  ]
}`

func testClient(serverURL string) *Client {
	cfg := Config{BaseURL: serverURL, APIKey: "test-key", Enabled: true}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   2 * time.Second,
		RateLimit: 1000,
		BurstSize: 1000,
	})
	return NewWithHTTPClient(cfg, httpClient)
}

func TestClientSearch(t *testing.T) {
	t.Run("normalizes search items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "crispr", r.URL.Query().Get("q"))
			assert.Equal(t, "snippet", r.URL.Query().Get("part"))
			assert.Equal(t, "video", r.URL.Query().Get("type"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer server.Close()

		client := testClient(server.URL)
		items, err := client.Search(context.Background(), "crispr", 10)
		require.NoError(t, err)
		require.Len(t, items, 2)

		first := items[0]
		assert.Equal(t, "youtube:abc123", first.ID)
		assert.Equal(t, "CRISPR Explained", first.Title)
		assert.Equal(t, "A deep dive into gene editing.", first.Description)
		assert.Equal(t, "SciChannel", first.Author)
		assert.Equal(t, "2024-03-10", first.Date)
		assert.Equal(t, "YouTube", first.Source)
		assert.Equal(t, "https://www.youtube.com/watch?v=abc123", first.URL)
		assert.Equal(t, domain.KindWebinar, first.Kind)
		assert.InDelta(t, 95, first.RelevanceScore, 0.001)

		// Blank description and channel fall back to title and provider name.
		second := items[1]
		assert.Equal(t, "Gene Therapy Webinar", second.Description)
		assert.Equal(t, "YouTube", second.Author)
		assert.InDelta(t, 90, second.RelevanceScore, 0.001)
	})

	t.Run("maps non-200 to a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.Search(context.Background(), "crispr", 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

		var perr *domain.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "YouTube", perr.Provider)
		assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	})
}

func TestEnabled(t *testing.T) {
	assert.True(t, New(Config{APIKey: "k", Enabled: true}).Enabled())
	assert.False(t, New(Config{Enabled: true}).Enabled(), "missing key disables the provider")
	assert.False(t, New(Config{APIKey: "k"}).Enabled())
}

func TestPublishedDate(t *testing.T) {
	assert.Equal(t, "2024-03-10", publishedDate("2024-03-10T09:00:00Z"))
	assert.Equal(t, "2023-11-02", publishedDate("2023-11-02 garbage"))
	assert.Equal(t, "1970-01-01", publishedDate("bad"))
}
