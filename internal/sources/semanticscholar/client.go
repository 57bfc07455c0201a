package semanticscholar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default base URL for the Semantic Scholar Graph API.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated requests.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// apiKeyHeader is the header name for the Semantic Scholar API key.
	apiKeyHeader = "x-api-key"

	// paperFields is the list of fields requested from the API.
	paperFields = "paperId,externalIds,title,abstract,year,publicationDate,fieldsOfStudy,authors,citationCount,url"

	// sourceName is the human-readable name for this source.
	sourceName = "Semantic Scholar"
)

// Config holds configuration for the Semantic Scholar adapter.
type Config struct {
	// BaseURL is the Graph API base URL.
	BaseURL string

	// APIKey is the optional API key; authenticated requests get higher
	// rate limits.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this source participates in fan-outs.
	Enabled bool
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client implements the sources.Source interface for Semantic Scholar.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Source = (*Client)(nil)

// New creates a new Semantic Scholar adapter.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		}),
	}
}

// NewWithHTTPClient creates an adapter with a custom HTTP client, useful for
// testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string { return sourceName }

// Enabled reports whether this source is enabled.
func (c *Client) Enabled() bool { return c.config.Enabled }

// Search queries Semantic Scholar for papers matching the query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.ResearchResult, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "building search URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "creating request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewProviderError(sourceName, resp.StatusCode, string(body), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&parsed); err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "decoding response", err)
	}

	results := make([]domain.ResearchResult, 0, len(parsed.Data))
	for i := range parsed.Data {
		result, ok := c.paperToResult(&parsed.Data[i], query)
		if !ok {
			continue
		}
		if err := domain.ValidateResearchResult(&result); err != nil {
			return nil, domain.NewProviderError(sourceName, 0, "normalizing paper", err)
		}
		results = append(results, result)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// buildSearchURL constructs the paper search URL.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/paper/search"

	values := url.Values{}
	values.Set("query", query)
	values.Set("limit", strconv.Itoa(limit))
	values.Set("fields", paperFields)
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// paperToResult converts one API paper to a canonical result. Returns false
// when the paper lacks an identifier or title.
func (c *Client) paperToResult(p *paperResult, query string) (domain.ResearchResult, bool) {
	title := sources.NormalizeWhitespace(p.Title)
	if p.PaperID == "" || title == "" {
		return domain.ResearchResult{}, false
	}

	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	pubDate := strings.TrimSpace(p.PublicationDate)
	if pubDate == "" {
		pubDate = sources.DateFromYear(p.Year)
	}
	if pubDate == "" {
		return domain.ResearchResult{}, false
	}

	recordURL := p.URL
	if recordURL == "" {
		recordURL = "https://www.semanticscholar.org/paper/" + p.PaperID
	}

	doi := ""
	if p.ExternalIDs != nil {
		doi = strings.TrimSpace(p.ExternalIDs.DOI)
	}

	citations := p.CitationCount
	if citations < 0 {
		citations = 0
	}

	return domain.ResearchResult{
		ID:              "s2:" + p.PaperID,
		Title:           title,
		Authors:         authors,
		Abstract:        sources.FallbackAbstract(p.Abstract),
		Source:          sourceName,
		URL:             recordURL,
		PublicationDate: pubDate,
		Kind:            domain.KindResearch,
		Tags:            sources.BaseTags(query, p.FieldsOfStudy...),
		CitationCount:   citations,
		DOI:             doi,
	}, true
}
