// Package openlearn adapts the OpenLearn free-course catalogue into the
// expert-content provider contract. OpenLearn has no public API, so this
// adapter scrapes the search results page with goquery.
package openlearn

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default base URL for the OpenLearn site.
	DefaultBaseURL = "https://www.open.edu/openlearn"

	// DefaultRateLimit is deliberately low; this is a scrape, not an API.
	DefaultRateLimit = 0.5

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 20 * time.Second

	// providerName is the human-readable name for this provider.
	providerName = "OpenLearn"

	// courseAuthor is used when a result card names no author.
	courseAuthor = "The Open University"
)

// Result-card selectors for the search results page.
const (
	cardSelector        = "article.search-result, div.search-result, li.search-result"
	titleSelector       = "h3 a, h2 a, .search-result-title a"
	descriptionSelector = "p.search-result-summary, .search-result-body p, p"
	dateSelector        = "time"
)

// Config holds configuration for the OpenLearn adapter.
type Config struct {
	// BaseURL is the site base URL.
	BaseURL string

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

// Client implements the expert.Provider interface for OpenLearn.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ expert.Provider = (*Client)(nil)

// New creates a new OpenLearn adapter.
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

// Enabled reports whether this provider is enabled.
func (c *Client) Enabled() bool { return c.config.Enabled }

// Search scrapes the OpenLearn search results page for courses matching the
// query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.ExpertContent, error) {
	searchURL, err := c.buildSearchURL(query)
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
		return nil, domain.NewProviderError(providerName, resp.StatusCode, "search page fetch failed", nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, domain.NewProviderError(providerName, 0, "parsing search page", err)
	}

	items := make([]domain.ExpertContent, 0, limit)
	var convErr error
	doc.Find(cardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		content, ok := c.cardToContent(card, len(items))
		if !ok {
			return true
		}
		if err := domain.ValidateExpertContent(&content); err != nil {
			convErr = domain.NewProviderError(providerName, 0, "normalizing course card", err)
			return false
		}
		items = append(items, content)
		return len(items) < limit
	})
	if convErr != nil {
		return nil, convErr
	}

	return items, nil
}

// buildSearchURL constructs the search results page URL.
func (c *Client) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/search-results"

	values := url.Values{}
	values.Set("query", query)
	values.Set("filter", "course")
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// cardToContent converts one result card to canonical expert content.
// Returns false for cards without a linked title.
func (c *Client) cardToContent(card *goquery.Selection, rank int) (domain.ExpertContent, bool) {
	titleLink := card.Find(titleSelector).First()
	title := sources.NormalizeWhitespace(titleLink.Text())
	href, _ := titleLink.Attr("href")
	if title == "" || href == "" {
		return domain.ExpertContent{}, false
	}

	courseURL, ok := c.resolveURL(href)
	if !ok {
		return domain.ExpertContent{}, false
	}

	description := sources.NormalizeWhitespace(card.Find(descriptionSelector).First().Text())
	if description == "" {
		description = title
	}

	return domain.ExpertContent{
		ID:             "openlearn:" + courseSlug(courseURL),
		Title:          title,
		Description:    description,
		Author:         courseAuthor,
		Date:           cardDate(card),
		Source:         providerName,
		URL:            courseURL,
		Kind:           domain.KindCourse,
		RelevanceScore: expert.RankScore(rank),
	}, true
}

// resolveURL absolutizes a card link against the configured base URL.
func (c *Client) resolveURL(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	base, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	return resolved.String(), true
}

// cardDate extracts a YYYY-MM-DD date from the card's time element, falling
// back to the epoch date when the page carries none.
func cardDate(card *goquery.Selection) string {
	node := card.Find(dateSelector).First()
	if stamp, ok := node.Attr("datetime"); ok && len(stamp) >= 10 {
		return stamp[:10]
	}
	if text := strings.TrimSpace(node.Text()); text != "" {
		if t, err := time.Parse("2 January 2006", text); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return "1970-01-01"
}

// courseSlug derives a stable identifier from the course URL path.
func courseSlug(courseURL string) string {
	u, err := url.Parse(courseURL)
	if err != nil {
		return courseURL
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}
