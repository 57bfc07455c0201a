package crossref

import (
	"context"
	"encoding/json"
	"fmt"
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
	// DefaultBaseURL is the default Crossref REST API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// sourceName is the human-readable name for this source.
	sourceName = "Crossref"
)

// jatsTagRegex strips JATS XML tags from Crossref abstracts.
var jatsTagRegex = regexp.MustCompile(`<[^>]+>`)

// Config holds configuration for the Crossref adapter.
type Config struct {
	// BaseURL is the Crossref API base URL.
	BaseURL string

	// Email is the contact email appended as mailto for the polite pool.
	Email string

	// Timeout is the request timeout.
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

// Client implements the sources.Source interface for Crossref.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Source = (*Client)(nil)

// New creates a new Crossref adapter.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	userAgent := "Scholarly-InsightsService/1.0"
	if cfg.Email != "" {
		userAgent += " (mailto:" + cfg.Email + ")"
	}

	return &Client{
		config: cfg,
		httpClient: sources.NewHTTPClient(sources.HTTPClientConfig{
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			BurstSize: cfg.BurstSize,
			UserAgent: userAgent,
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

// Search queries Crossref for works matching the query.
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
	if parsed.Status != "ok" {
		return nil, domain.NewProviderError(sourceName, 0, "unexpected response status "+parsed.Status, nil)
	}

	results := make([]domain.ResearchResult, 0, len(parsed.Message.Items))
	for i := range parsed.Message.Items {
		result, ok := c.itemToResult(&parsed.Message.Items[i], query)
		if !ok {
			continue
		}
		if err := domain.ValidateResearchResult(&result); err != nil {
			return nil, domain.NewProviderError(sourceName, 0, "normalizing work", err)
		}
		results = append(results, result)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// buildSearchURL constructs the works query URL.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/works"

	values := url.Values{}
	values.Set("query", query)
	values.Set("rows", strconv.Itoa(limit))
	values.Set("sort", "relevance")
	if c.config.Email != "" {
		values.Set("mailto", c.config.Email)
	}
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// itemToResult converts one Crossref work to a canonical result. Returns
// false when the work lacks a DOI, title, or any publication date.
func (c *Client) itemToResult(item *workItem, query string) (domain.ResearchResult, bool) {
	doi := strings.ToLower(strings.TrimSpace(item.DOI))
	if doi == "" || len(item.Title) == 0 {
		return domain.ResearchResult{}, false
	}
	title := sources.NormalizeWhitespace(item.Title[0])
	if title == "" {
		return domain.ResearchResult{}, false
	}

	authors := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		name := formatAuthor(a)
		if name != "" {
			authors = append(authors, name)
		}
	}

	pubDate := formatDateParts(item.Published)
	if pubDate == "" {
		pubDate = formatDateParts(item.PublishedOnline)
	}
	if pubDate == "" {
		return domain.ResearchResult{}, false
	}

	recordURL := item.URL
	if recordURL == "" {
		recordURL = "https://doi.org/" + doi
	}

	kind := domain.KindArticle
	if item.Type == "proceedings-article" {
		kind = domain.KindConference
	}

	citations := item.CitedByCount
	if citations < 0 {
		citations = 0
	}

	return domain.ResearchResult{
		ID:              "crossref:" + doi,
		Title:           title,
		Authors:         authors,
		Abstract:        sources.FallbackAbstract(stripJATS(item.Abstract)),
		Source:          sourceName,
		URL:             recordURL,
		PublicationDate: pubDate,
		Kind:            kind,
		Tags:            sources.BaseTags(query, item.Subject...),
		CitationCount:   citations,
		DOI:             doi,
	}, true
}

// formatAuthor renders one contributor as a display name.
func formatAuthor(a author) string {
	if a.Name != "" {
		return strings.TrimSpace(a.Name)
	}
	name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
	return name
}

// formatDateParts renders Crossref's [[year, month, day]] encoding as a
// YYYY-MM-DD date, defaulting month and day to 01 when absent.
func formatDateParts(dp *dateParts) string {
	if dp == nil || len(dp.DateParts) == 0 || len(dp.DateParts[0]) == 0 {
		return ""
	}
	parts := dp.DateParts[0]
	year := parts[0]
	if year <= 0 {
		return ""
	}
	month, day := 1, 1
	if len(parts) > 1 && parts[1] >= 1 && parts[1] <= 12 {
		month = parts[1]
	}
	if len(parts) > 2 && parts[2] >= 1 && parts[2] <= 31 {
		day = parts[2]
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// stripJATS removes JATS XML markup from a Crossref abstract.
func stripJATS(abstract string) string {
	return jatsTagRegex.ReplaceAllString(abstract, " ")
}
