package arxiv

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

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <opensearch:totalResults xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">2</opensearch:totalResults>
  <entry>
    <id>http://arxiv.org/abs/2301.12345v2</id>
    <title>  Deep Learning for
      Genome Annotation  </title>
    <summary>
      We present a survey of deep learning methods.
    </summary>
    <published>2023-01-15T18:30:00Z</published>
    <author><name>Grace Hopper</name></author>
    <author><name>Alan Turing</name></author>
    <category term="cs.LG"/>
    <category term="q-bio.GN"/>
    <link href="http://arxiv.org/abs/2301.12345v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.12345v2" title="pdf" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/hep-th/9901001v1</id>
    <title>Old Style Identifier</title>
    <summary></summary>
    <published>1999-01-04T00:00:00Z</published>
    <author><name>Emmy Noether</name></author>
  </entry>
</feed>`

func testClient(serverURL string) *Client {
	cfg := Config{BaseURL: serverURL, Enabled: true}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   2 * time.Second,
		RateLimit: 1000,
		BurstSize: 1000,
	})
	return NewWithHTTPClient(cfg, httpClient)
}

func TestClientSearch(t *testing.T) {
	t.Run("normalizes feed entries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/query", r.URL.Path)
			assert.Equal(t, "all:crispr", r.URL.Query().Get("search_query"))
			assert.Equal(t, "10", r.URL.Query().Get("max_results"))
			w.Header().Set("Content-Type", "application/atom+xml")
			_, _ = w.Write([]byte(sampleFeed))
		}))
		defer server.Close()

		client := testClient(server.URL)
		results, err := client.Search(context.Background(), "crispr", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		first := results[0]
		assert.Equal(t, "arxiv:2301.12345", first.ID)
		assert.Equal(t, "Deep Learning for Genome Annotation", first.Title)
		assert.Equal(t, []string{"Grace Hopper", "Alan Turing"}, first.Authors)
		assert.Equal(t, "We present a survey of deep learning methods.", first.Abstract)
		assert.Equal(t, "arXiv", first.Source)
		assert.Equal(t, "http://arxiv.org/abs/2301.12345v2", first.URL)
		assert.Equal(t, "2023-01-15", first.PublicationDate)
		assert.Equal(t, domain.KindResearch, first.Kind)
		assert.Equal(t, []string{"crispr", "cs.LG", "q-bio.GN"}, first.Tags)
		assert.Zero(t, first.CitationCount)

		second := results[1]
		assert.Equal(t, "arxiv:hep-th/9901001", second.ID)
		assert.Equal(t, domain.NoAbstractSentinel, second.Abstract)
		assert.Equal(t, "https://arxiv.org/abs/hep-th/9901001", second.URL)
	})

	t.Run("truncates to the limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleFeed))
		}))
		defer server.Close()

		client := testClient(server.URL)
		results, err := client.Search(context.Background(), "crispr", 1)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("maps non-200 to a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.Search(context.Background(), "crispr", 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

		var perr *domain.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "arXiv", perr.Provider)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	})

	t.Run("maps malformed XML to a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not xml at all"))
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.Search(context.Background(), "crispr", 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	})
}

func TestExtractArXivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.12345v1", "2301.12345"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"http://arxiv.org/abs/hep-th/9901001v1", "hep-th/9901001"},
		{"https://example.org/not-arxiv", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArXivID(tt.input), "input %q", tt.input)
	}
}
