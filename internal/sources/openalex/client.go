package openalex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/scholarly/insights-service/internal/domain"
	"github.com/scholarly/insights-service/internal/sources"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit in requests per second.
	// The polite pool (with a contact email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// doiPrefix is the URL prefix OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"

	// idPrefix is the URL prefix for OpenAlex work IDs.
	idPrefix = "https://openalex.org/"

	// sourceName is the human-readable name for this source.
	sourceName = "OpenAlex"
)

// Config holds configuration for the OpenAlex adapter.
type Config struct {
	// BaseURL is the OpenAlex API base URL.
	BaseURL string

	// Email is the contact email for the polite pool; providing one grants
	// higher rate limits.
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

// Client implements the sources.Source interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Source = (*Client)(nil)

// New creates a new OpenAlex adapter.
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

// Search queries OpenAlex for works matching the query.
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

	results := make([]domain.ResearchResult, 0, len(parsed.Results))
	for i := range parsed.Results {
		result, ok := c.workToResult(&parsed.Results[i], query)
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

// buildSearchURL constructs the works search URL.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/works"

	values := url.Values{}
	values.Set("search", query)
	values.Set("per-page", strconv.Itoa(limit))
	if c.config.Email != "" {
		values.Set("mailto", c.config.Email)
	}
	baseURL.RawQuery = values.Encode()

	return baseURL.String(), nil
}

// workToResult converts one OpenAlex work to a canonical result. Returns
// false when the work lacks a usable identifier, title, or date.
func (c *Client) workToResult(w *work, query string) (domain.ResearchResult, bool) {
	workID := strings.TrimPrefix(strings.TrimSpace(w.ID), idPrefix)
	title := sources.NormalizeWhitespace(w.DisplayName)
	if title == "" {
		title = sources.NormalizeWhitespace(w.Title)
	}
	if workID == "" || title == "" {
		return domain.ResearchResult{}, false
	}

	authors := make([]string, 0, len(w.Authorships))
	for _, a := range w.Authorships {
		if name := strings.TrimSpace(a.Author.DisplayName); name != "" {
			authors = append(authors, name)
		}
	}

	pubDate := strings.TrimSpace(w.PublicationDate)
	if pubDate == "" {
		pubDate = sources.DateFromYear(w.PublicationYear)
	}
	if pubDate == "" {
		return domain.ResearchResult{}, false
	}

	recordURL := ""
	if w.PrimaryLocation != nil {
		recordURL = w.PrimaryLocation.LandingPageURL
	}
	if recordURL == "" && w.DOI != "" {
		recordURL = w.DOI
	}
	if recordURL == "" {
		recordURL = idPrefix + workID
	}

	concepts := make([]string, 0, len(w.Concepts))
	for _, concept := range w.Concepts {
		if concept.DisplayName != "" {
			concepts = append(concepts, concept.DisplayName)
		}
	}

	citations := w.CitedByCount
	if citations < 0 {
		citations = 0
	}

	return domain.ResearchResult{
		ID:              "openalex:" + workID,
		Title:           title,
		Authors:         authors,
		Abstract:        sources.FallbackAbstract(reconstructAbstract(w.AbstractInvertedIndex)),
		Source:          sourceName,
		URL:             recordURL,
		PublicationDate: pubDate,
		Kind:            domain.KindResearch,
		Tags:            sources.BaseTags(query, concepts...),
		CitationCount:   citations,
		DOI:             normalizeDOI(w.DOI),
	}, true
}

// normalizeDOI strips URL prefixes from DOIs and lowercases them.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// maxAbstractWords bounds inverted-index reconstruction against malicious
// payloads with excessive position entries.
const maxAbstractWords = 100_000

// reconstructAbstract rebuilds abstract text from OpenAlex's inverted index,
// which maps each word to the positions it occupies.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}

	total := 0
	for _, positions := range invertedIndex {
		total += len(positions)
	}
	if total > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, total)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, 0, len(pairs))
	for _, p := range pairs {
		words = append(words, p.word)
	}
	return strings.Join(words, " ")
}
