// Package eventbrite adapts the Eventbrite v3 event search API into the
// expert-content provider contract. Events map to workshops, or conferences
// when the event format says so.
package eventbrite

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/expert"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default base URL for the Eventbrite v3 API.
	DefaultBaseURL = "https://www.eventbriteapi.com/v3"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 15 * time.Second

	// providerName is the human-readable name for this provider.
	providerName = "Eventbrite"
)

// Config holds configuration for the Eventbrite adapter.
type Config struct {
	// BaseURL is the v3 API base URL.
	BaseURL string

	// Token is the OAuth private token. The provider disables itself when
	// empty, since the API rejects unauthenticated requests.
	Token string

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

// Client implements the expert.Provider interface for Eventbrite.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ expert.Provider = (*Client)(nil)

// New creates a new Eventbrite adapter.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpCfg := sources.HTTPClientConfig{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	}
	if cfg.Token != "" {
		httpCfg.APIKey = "Bearer " + cfg.Token
		httpCfg.APIKeyHeader = "Authorization"
	}

	return &Client{
		config:     cfg,
		httpClient: sources.NewHTTPClient(httpCfg),
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

// Enabled reports whether this provider is enabled and has a token.
func (c *Client) Enabled() bool { return c.config.Enabled && c.config.Token != "" }

// Search queries Eventbrite for events matching the query.
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
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewProviderError(providerName, resp.StatusCode, string(body), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&parsed); err != nil {
		return nil, domain.NewProviderError(providerName, 0, "decoding response", err)
	}

	items := make([]domain.ExpertContent, 0, len(parsed.Events))
	for i := range parsed.Events {
		content, ok := c.eventToContent(&parsed.Events[i], len(items))
		if !ok {
			continue
		}
		if err := domain.ValidateExpertContent(&content); err != nil {
			return nil, domain.NewProviderError(providerName, 0, "normalizing event", err)
		}
		items = append(items, content)
		if len(items) == limit {
			break
		}
	}

	return items, nil
}

// buildSearchURL constructs the event search URL.
func (c *Client) buildSearchURL(query string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/events/search/"

	values := url.Values{}
	values.Set("q", query)
	values.Set("expand", "organizer,format")
	values.Set("sort_by", "best")
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// eventToContent converts one event to canonical expert content. Returns
// false when the event lacks an identifier, title, or URL.
func (c *Client) eventToContent(ev *event, rank int) (domain.ExpertContent, bool) {
	title := sources.NormalizeWhitespace(ev.Name.Text)
	if ev.ID == "" || title == "" || ev.URL == "" {
		return domain.ExpertContent{}, false
	}

	description := sources.NormalizeWhitespace(ev.Description.Text)
	if description == "" {
		description = title
	}

	author := providerName
	if ev.Organizer != nil && strings.TrimSpace(ev.Organizer.Name) != "" {
		author = strings.TrimSpace(ev.Organizer.Name)
	}

	return domain.ExpertContent{
		ID:             "eventbrite:" + ev.ID,
		Title:          title,
		Description:    description,
		Author:         author,
		Date:           startDate(ev.Start),
		Source:         providerName,
		URL:            ev.URL,
		Kind:           eventKind(ev.Format),
		RelevanceScore: expert.RankScore(rank),
	}, true
}

// eventKind maps an Eventbrite format to a content kind. Conference-style
// formats stay conferences, everything else is a workshop.
func eventKind(f *format) domain.ResultKind {
	if f == nil {
		return domain.KindWorkshop
	}
	name := strings.ToLower(f.Name + " " + f.ShortName)
	if strings.Contains(name, "conference") || strings.Contains(name, "summit") {
		return domain.KindConference
	}
	return domain.KindWorkshop
}

// startDate reduces an event start time to a YYYY-MM-DD date, preferring the
// attendee-local date.
func startDate(start eventTime) string {
	for _, stamp := range []string{start.Local, start.UTC} {
		if stamp == "" {
			continue
		}
		for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
			if t, err := time.Parse(layout, stamp); err == nil {
				return t.Format("2006-01-02")
			}
		}
		if len(stamp) >= 10 {
			return stamp[:10]
		}
	}
	return "1970-01-01"
}
