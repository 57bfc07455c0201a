package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
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
	// DefaultBaseURL is the base URL for the NCBI E-utilities API.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// DefaultRateLimit is the default rate limit (NCBI allows 3 req/s
	// without an API key, 10 req/s with one).
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// sourceName is the human-readable name for this source.
	sourceName = "PubMed"
)

// monthIndex maps PubMed month abbreviations to month numbers.
var monthIndex = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

// Config holds configuration for the PubMed adapter.
type Config struct {
	// BaseURL is the E-utilities base URL.
	BaseURL string

	// APIKey is the optional NCBI API key, passed as the api_key query
	// parameter.
	APIKey string

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

// Client implements the sources.Source interface for PubMed.
type Client struct {
	config     Config
	httpClient *sources.HTTPClient
}

var _ sources.Source = (*Client)(nil)

// New creates a new PubMed adapter.
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

// Name returns the human-readable name for this source.
func (c *Client) Name() string { return sourceName }

// Enabled reports whether this source is enabled.
func (c *Client) Enabled() bool { return c.config.Enabled }

// Search queries PubMed in two steps: esearch for matching PMIDs, then
// esummary for their metadata.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.ResearchResult, error) {
	pmids, err := c.esearch(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(pmids) == 0 {
		return []domain.ResearchResult{}, nil
	}

	summaries, err := c.esummary(ctx, pmids)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ResearchResult, 0, len(pmids))
	for _, pmid := range pmids {
		summary, ok := summaries[pmid]
		if !ok {
			continue
		}
		result, ok := c.summaryToResult(&summary, query)
		if !ok {
			continue
		}
		if err := domain.ValidateResearchResult(&result); err != nil {
			return nil, domain.NewProviderError(sourceName, 0, "normalizing summary", err)
		}
		results = append(results, result)
		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// esearch returns the PMIDs matching the query.
func (c *Client) esearch(ctx context.Context, query string, limit int) ([]string, error) {
	endpoint, err := c.buildURL("/esearch.fcgi", url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(limit)},
		"sort":    {"relevance"},
		"retmode": {"json"},
	})
	if err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "building esearch URL", err)
	}

	var envelope esearchEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	return envelope.ESearchResult.IDList, nil
}

// esummary returns document summaries for the given PMIDs.
func (c *Client) esummary(ctx context.Context, pmids []string) (map[string]docSummary, error) {
	endpoint, err := c.buildURL("/esummary.fcgi", url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"json"},
	})
	if err != nil {
		return nil, domain.NewProviderError(sourceName, 0, "building esummary URL", err)
	}

	var envelope esummaryEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, err
	}
	return envelope.Result.Summaries, nil
}

// buildURL joins the base URL with an E-utilities endpoint and query values,
// attaching the API key when configured.
func (c *Client) buildURL(endpoint string, values url.Values) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", err
	}
	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + endpoint
	if c.config.APIKey != "" {
		values.Set("api_key", c.config.APIKey)
	}
	baseURL.RawQuery = values.Encode()
	return baseURL.String(), nil
}

// getJSON executes a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.NewProviderError(sourceName, 0, "creating request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewProviderError(sourceName, 0, "executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewProviderError(sourceName, resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(out); err != nil {
		return domain.NewProviderError(sourceName, 0, "decoding response", err)
	}
	return nil
}

// summaryToResult converts one document summary to a canonical result.
// Returns false when the record lacks a usable title or date.
func (c *Client) summaryToResult(s *docSummary, query string) (domain.ResearchResult, bool) {
	title := sources.NormalizeWhitespace(strings.TrimSuffix(strings.TrimSpace(s.Title), "."))
	if s.UID == "" || title == "" {
		return domain.ResearchResult{}, false
	}

	pubDate := parsePubDate(s.PubDate)
	if pubDate == "" {
		return domain.ResearchResult{}, false
	}

	authors := make([]string, 0, len(s.Authors))
	for _, a := range s.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	doi := ""
	for _, id := range s.ArticleIDs {
		if id.IDType == "doi" {
			doi = strings.ToLower(strings.TrimSpace(id.Value))
			break
		}
	}

	tags := sources.BaseTags(query)
	if journal := sources.NormalizeWhitespace(s.FullJournal); journal != "" {
		tags = append(tags, journal)
	}

	return domain.ResearchResult{
		ID:              "pubmed:" + s.UID,
		Title:           title,
		Authors:         authors,
		Abstract:        domain.NoAbstractSentinel, // esummary carries no abstract text
		Source:          sourceName,
		URL:             "https://pubmed.ncbi.nlm.nih.gov/" + s.UID + "/",
		PublicationDate: pubDate,
		Kind:            domain.KindResearch,
		Tags:            tags,
		CitationCount:   0,
		DOI:             doi,
	}, true
}

// parsePubDate normalizes PubMed's "2023 Jan 15" / "2023 Jan" / "2023"
// formats to YYYY-MM-DD, defaulting missing parts to 01.
func parsePubDate(pubdate string) string {
	fields := strings.Fields(strings.TrimSpace(pubdate))
	if len(fields) == 0 {
		return ""
	}

	year, err := strconv.Atoi(fields[0])
	if err != nil || year <= 0 {
		return ""
	}

	month, day := 1, 1
	if len(fields) > 1 {
		if m, ok := monthIndex[fields[1]]; ok {
			month = m
		}
	}
	if len(fields) > 2 {
		if d, err := strconv.Atoi(fields[2]); err == nil && d >= 1 && d <= 31 {
			day = d
		}
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
