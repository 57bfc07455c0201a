// Package youtube adapts the YouTube Data API v3 search endpoint into the
// expert-content provider contract. Videos are categorized as webinars.
package youtube

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
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default base URL for the YouTube Data API v3.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// providerName is the human-readable name for this provider.
	providerName = "YouTube"
)

// Config holds configuration for the YouTube adapter.
type Config struct {
	// BaseURL is the Data API base URL.
	BaseURL string

	// APIKey is the Data API key. The provider disables itself when empty,
	// since the API rejects unauthenticated search requests.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this provider participates in fan-outs.
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

// Client implements the expert.Provider interface for YouTube.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ expert.Provider = (*Client)(nil)

// New creates a new YouTube adapter.
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

// NewWithHTTPClient creates an adapter with a custom HTTP client, useful for
// testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *sources.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{config: cfg, httpClient: httpClient}
}

// Name returns the human-readable name for this provider.
func (c *Client) Name() string { return providerName }

// Enabled reports whether this provider is enabled and has an API key.
func (c *Client) Enabled() bool { return c.config.Enabled && c.config.APIKey != "" }

// Search queries YouTube for videos matching the query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.ExpertContent, error) {
	searchURL, err := c.buildSearchURL(query, limit)
	if err != nil {
		return nil, domain.NewProviderError(providerName, 0, "building search URL", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, domain.NewProviderError(providerName, 0, "creating request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewProviderError(providerName, 0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewProviderError(providerName, resp.StatusCode, string(body), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&parsed); err != nil {
		return nil, domain.NewProviderError(providerName, 0, "decoding response", err)
	}

	items := make([]domain.ExpertContent, 0, len(parsed.Items))
	for i := range parsed.Items {
		content, ok := c.itemToContent(&parsed.Items[i], len(items))
		if !ok {
			continue
		}
		if err := domain.ValidateExpertContent(&content); err != nil {
			return nil, domain.NewProviderError(providerName, 0, "normalizing video", err)
		}
		items = append(items, content)
		if len(items) == limit {
			break
		}
	}

	return items, nil
}

// buildSearchURL constructs the search.list URL.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/search"

	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("q", query)
	values.Set("type", "video")
	values.Set("maxResults", strconv.Itoa(limit))
	values.Set("key", c.config.APIKey)
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// itemToContent converts one search item to canonical expert content.
// Returns false when the item lacks a video ID or title.
func (c *Client) itemToContent(item *searchItem, rank int) (domain.ExpertContent, bool) {
	title := sources.NormalizeWhitespace(item.Snippet.Title)
	if item.ID.VideoID == "" || title == "" {
		return domain.ExpertContent{}, false
	}

	description := sources.NormalizeWhitespace(item.Snippet.Description)
	if description == "" {
		description = title
	}

	author := strings.TrimSpace(item.Snippet.ChannelTitle)
	if author == "" {
		author = providerName
	}

	return domain.ExpertContent{
		ID:             "youtube:" + item.ID.VideoID,
		Title:          title,
		Description:    description,
		Author:         author,
		Date:           publishedDate(item.Snippet.PublishedAt),
		Source:         providerName,
		URL:            "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		Kind:           domain.KindWebinar,
		RelevanceScore: expert.RankScore(rank),
	}, true
}

// publishedDate reduces an RFC 3339 timestamp to a YYYY-MM-DD date.
func publishedDate(publishedAt string) string {
	if t, err := time.Parse(time.RFC3339, publishedAt); err == nil {
		return t.Format("2006-01-02")
	}
	if len(publishedAt) >= 10 {
		return publishedAt[:10]
	}
	return "1970-01-01"
}
