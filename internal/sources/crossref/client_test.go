package crossref

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
  "status": "ok",
  "message": {
    "total-results": 2,
    "items": [
      {
        "DOI": "10.1000/J.EXAMPLE.2023.01",
        "title": ["CRISPR Screens  at Scale"],
        "abstract": "<jats:p>A large-scale screening study.</jats:p>",
        "author": [
          {"given": "Ada", "family": "Lovelace"},
          {"name": "Genome Consortium"}
        ],
        "published": {"date-parts": [[2023, 4, 17]]},
        "URL": "https://doi.org/10.1000/j.example.2023.01",
        "type": "journal-article",
        "subject": ["Genetics"],
        "is-referenced-by-count": 42
      },
      {
        "DOI": "10.1000/proc.2022",
        "title": ["Workshop Proceedings Paper"],
        "author": [{"given": "Grace", "family": "Hopper"}],
        "published-online": {"date-parts": [[2022]]},
        "URL": "",
        "type": "proceedings-article",
        "is-referenced-by-count": 3
      }
    ]
  }
}`

func testClient(serverURL string) *Client {
	cfg := Config{BaseURL: serverURL, Email: "ops@example.org", Enabled: true}
	httpClient := sources.NewHTTPClient(sources.HTTPClientConfig{
		Timeout:   2 * time.Second,
		RateLimit: 1000,
		BurstSize: 1000,
	})
	return NewWithHTTPClient(cfg, httpClient)
}

func TestClientSearch(t *testing.T) {
	t.Run("normalizes works", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "crispr", r.URL.Query().Get("query"))
			assert.Equal(t, "10", r.URL.Query().Get("rows"))
			assert.Equal(t, "ops@example.org", r.URL.Query().Get("mailto"))
			_, _ = w.Write([]byte(sampleResponse))
		}))
		defer server.Close()

		client := testClient(server.URL)
		results, err := client.Search(context.Background(), "crispr", 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		first := results[0]
		assert.Equal(t, "crossref:10.1000/j.example.2023.01", first.ID, "DOI lower-cased")
		assert.Equal(t, "CRISPR Screens at Scale", first.Title)
		assert.Equal(t, []string{"Ada Lovelace", "Genome Consortium"}, first.Authors)
		assert.Equal(t, "A large-scale screening study.", first.Abstract, "JATS markup stripped")
		assert.Equal(t, "Crossref", first.Source)
		assert.Equal(t, "2023-04-17", first.PublicationDate)
		assert.Equal(t, domain.KindArticle, first.Kind)
		assert.Equal(t, []string{"crispr", "Genetics"}, first.Tags)
		assert.Equal(t, 42, first.CitationCount)
		assert.Equal(t, "10.1000/j.example.2023.01", first.DOI)

		second := results[1]
		assert.Equal(t, domain.KindConference, second.Kind)
		assert.Equal(t, "2022-01-01", second.PublicationDate, "year-only date")
		assert.Equal(t, "https://doi.org/10.1000/proc.2022", second.URL, "URL synthesized from DOI")
		assert.Equal(t, domain.NoAbstractSentinel, second.Abstract)
	})

	t.Run("maps a non-ok envelope to a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "error", "message": {}}`))
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.Search(context.Background(), "crispr", 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	})

	t.Run("maps non-200 to a provider error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.Search(context.Background(), "crispr", 5)
		require.Error(t, err)

		var perr *domain.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusNotFound, perr.StatusCode)
	})
}

func TestFormatDateParts(t *testing.T) {
	tests := []struct {
		name string
		in   *dateParts
		want string
	}{
		{"nil", nil, ""},
		{"empty", &dateParts{}, ""},
		{"full date", &dateParts{DateParts: [][]int{{2023, 4, 17}}}, "2023-04-17"},
		{"year and month", &dateParts{DateParts: [][]int{{2023, 4}}}, "2023-04-01"},
		{"year only", &dateParts{DateParts: [][]int{{2023}}}, "2023-01-01"},
		{"zero year", &dateParts{DateParts: [][]int{{0}}}, ""},
		{"out-of-range month", &dateParts{DateParts: [][]int{{2023, 13, 5}}}, "2023-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDateParts(tt.in))
		})
	}
}

func TestStripJATS(t *testing.T) {
	assert.Equal(t, " Some  text  ", stripJATS("<jats:p>Some <jats:italic>text</jats:italic></jats:p>"))
	assert.Equal(t, "plain", stripJATS("plain"))
}
