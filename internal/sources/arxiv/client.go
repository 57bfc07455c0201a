// Package arxiv provides a research source adapter for the arXiv API.
//
// arXiv exposes an Atom XML search endpoint; this package translates its
// feed entries into canonical research results.
//
// API documentation: https://info.arxiv.org/help/api/
package arxiv

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit is the default rate limit (3 requests per second).
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// sourceName is the human-readable name for this source.
	sourceName = "arXiv"
)

// arxivIDRegex extracts the arXiv ID from the entry URL, e.g.
// "http://arxiv.org/abs/2301.12345v1" or "http://arxiv.org/abs/hep-th/9901001v1".
var arxivIDRegex = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Config holds configuration for the arXiv adapter.
type Config struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this source participates in fan-outs.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
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

// Client implements the sources.Source interface for arXiv.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Source = (*Client)(nil)

// New creates a new arXiv adapter with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
		}),
	}
}

// NewWithHTTPClient creates an arXiv adapter with a custom HTTP client.
// This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string { return sourceName }

// Enabled reports whether this source is enabled.
func (c *Client) Enabled() bool { return c.config.Enabled }

// Search queries arXiv for records matching the query.
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

	// Parse the Atom XML response (limit body to 10MB).
	var parsed feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&parsed); err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "decoding response", err)
	}

	results := make([]domain.ResearchResult, 0, len(parsed.Entries))
	for i := range parsed.Entries {
		result, ok := c.entryToResult(&parsed.Entries[i], query)
		if !ok {
			continue
		}
		if err := domain.ValidateResearchResult(&result); err != nil {
			return nil, domain.NewProviderError(sourceName, 0, "normalizing entry", err)
		}
		results = append(results, result)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// buildSearchURL constructs the arXiv search API URL.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	values := url.Values{}
	values.Set("search_query", "all:"+query)
	values.Set("max_results", strconv.Itoa(limit))
	values.Set("sortBy", "relevance")
	values.Set("sortOrder", "descending")
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// entryToResult converts an arXiv Atom entry to a canonical result.
// Returns false when the entry carries no usable identifier or title.
func (c *Client) entryToResult(e *entry, query string) (domain.ResearchResult, bool) {
	arxivID := extractArXivID(e.ID)
	title := sources.NormalizeWhitespace(e.Title)
	if arxivID == "" || title == "" {
		return domain.ResearchResult{}, false
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	pubDate := ""
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		pubDate = t.Format("2006-01-02")
	}
	if pubDate == "" {
		return domain.ResearchResult{}, false
	}

	// Prefer the alternate HTML link; fall back to the abs page.
	recordURL := ""
	for _, l := range e.Links {
		if l.Rel == "alternate" && l.Href != "" {
			recordURL = l.Href
			break
		}
	}
	if recordURL == "" {
		recordURL = "https://arxiv.org/abs/" + arxivID
	}

	categories := make([]string, 0, len(e.Categories))
	for _, cat := range e.Categories {
		if cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}

	return domain.ResearchResult{
		ID:              "arxiv:" + arxivID,
		Title:           title,
		Authors:         authors,
		Abstract:        sources.FallbackAbstract(e.Summary),
		Source:          sourceName,
		URL:             recordURL,
		PublicationDate: pubDate,
		Kind:            domain.KindResearch,
		Tags:            sources.BaseTags(query, categories...),
		CitationCount:   0, // arXiv does not report citation counts
		DOI:             strings.TrimSpace(e.DOI),
	}, true
}

// extractArXivID extracts the arXiv ID from the full entry URL.
// Input: "http://arxiv.org/abs/2301.12345v1" -> "2301.12345"
func extractArXivID(entryURL string) string {
	matches := arxivIDRegex.FindStringSubmatch(entryURL)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}
