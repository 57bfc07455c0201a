// Package config provides configuration management for the insights
// aggregation service.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the insights aggregation service.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `mapstructure:"server"`
	// Logging contains structured logging settings.
	Logging LoggingConfig `mapstructure:"logging"`
	// Metrics contains Prometheus metrics exposure settings.
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Cache contains aggregation cache settings.
	Cache CacheConfig `mapstructure:"cache"`
	// Aggregation contains fan-out settings shared across provider families.
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	// ResearchSources contains research provider API configurations.
	ResearchSources ResearchSourcesConfig `mapstructure:"research_sources"`
	// ExpertSources contains expert-content provider configurations.
	ExpertSources ExpertSourcesConfig `mapstructure:"expert_sources"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	// Host is the address to bind the server to (default: 0.0.0.0).
	Host string `mapstructure:"host"`
	// HTTPPort is the HTTP server port (default: 8080).
	HTTPPort int `mapstructure:"http_port"`
	// ReadTimeout is the maximum duration for reading the request body.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`
	// Format is the log format (json, console).
	Format string `mapstructure:"format"`
	// Output is the log output destination (stdout, stderr, file path).
	Output string `mapstructure:"output"`
	// TimeFormat is the timestamp format.
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	// Enabled enables metrics collection and exposure.
	Enabled bool `mapstructure:"enabled"`
	// Path is the HTTP path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// CacheConfig holds aggregation cache configuration.
type CacheConfig struct {
	// Enabled enables the memoizing cache in front of both pipelines.
	Enabled bool `mapstructure:"enabled"`
	// TTL is how long one cached pipeline output stays valid.
	TTL time.Duration `mapstructure:"ttl"`
	// Size is the maximum number of cached entries per family.
	Size int `mapstructure:"size"`
}

// AggregationConfig holds fan-out settings.
type AggregationConfig struct {
	// SourceTimeout bounds each individual provider call within a fan-out.
	SourceTimeout time.Duration `mapstructure:"source_timeout"`
}

// ResearchSourcesConfig holds configuration for all research provider APIs.
type ResearchSourcesConfig struct {
	// ArXiv contains arXiv API settings.
	ArXiv SourceConfig `mapstructure:"arxiv"`
	// SemanticScholar contains Semantic Scholar API settings.
	SemanticScholar SourceConfig `mapstructure:"semantic_scholar"`
	// OpenAlex contains OpenAlex API settings.
	OpenAlex SourceConfig `mapstructure:"openalex"`
	// Crossref contains Crossref API settings.
	Crossref SourceConfig `mapstructure:"crossref"`
	// PubMed contains PubMed E-utilities settings.
	PubMed SourceConfig `mapstructure:"pubmed"`
}

// SourceConfig holds configuration for a single provider API.
type SourceConfig struct {
	// Enabled controls whether this provider is used.
	Enabled bool `mapstructure:"enabled"`
	// APIKey is the API key (loaded from an environment variable, e.g.
	// INSIGHTS_RESEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY).
	APIKey string `mapstructure:"-"`
	// BaseURL is the API base URL.
	BaseURL string `mapstructure:"base_url"`
	// Email is the contact email for providers with a polite pool
	// (OpenAlex, Crossref).
	Email string `mapstructure:"email"`
	// Timeout is the timeout for API calls.
	Timeout time.Duration `mapstructure:"timeout"`
	// RateLimit is the maximum requests per second.
	RateLimit float64 `mapstructure:"rate_limit"`
	// BurstSize is the maximum burst of requests allowed.
	BurstSize int `mapstructure:"burst_size"`
}

// ExpertSourcesConfig holds configuration for expert-content providers.
type ExpertSourcesConfig struct {
	// YouTube contains YouTube Data API settings.
	YouTube SourceConfig `mapstructure:"youtube"`
	// Eventbrite contains Eventbrite API settings.
	Eventbrite SourceConfig `mapstructure:"eventbrite"`
	// OpenLearn contains OpenLearn scrape settings.
	OpenLearn SourceConfig `mapstructure:"openlearn"`
	// CuratedPath optionally overrides the embedded curated fallback
	// dataset with an external YAML file.
	CuratedPath string `mapstructure:"curated_path"`
}

// HTTPAddress returns the HTTP server address.
func (c *ServerConfig) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// Load loads configuration from environment variables and config files.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/insights-service")

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load secrets exclusively from environment variables.
	// These fields use mapstructure:"-" to prevent loading from config files.
	loadSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadSecrets populates secret fields exclusively from environment variables.
// These fields are tagged with mapstructure:"-" to prevent loading from config files.
func loadSecrets(cfg *Config) {
	cfg.ResearchSources.SemanticScholar.APIKey = os.Getenv("INSIGHTS_RESEARCH_SOURCES_SEMANTIC_SCHOLAR_API_KEY")
	cfg.ResearchSources.PubMed.APIKey = os.Getenv("INSIGHTS_RESEARCH_SOURCES_PUBMED_API_KEY")

	cfg.ExpertSources.YouTube.APIKey = os.Getenv("INSIGHTS_EXPERT_SOURCES_YOUTUBE_API_KEY")
	cfg.ExpertSources.Eventbrite.APIKey = os.Getenv("INSIGHTS_EXPERT_SOURCES_EVENTBRITE_TOKEN")
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cache.size", 256)

	// Aggregation defaults
	v.SetDefault("aggregation.source_timeout", "20s")

	// Research sources defaults - arXiv
	// API keys are loaded exclusively from environment variables (see loadSecrets).
	v.SetDefault("research_sources.arxiv.enabled", true)
	v.SetDefault("research_sources.arxiv.base_url", "https://export.arxiv.org/api")
	v.SetDefault("research_sources.arxiv.timeout", "15s")
	v.SetDefault("research_sources.arxiv.rate_limit", 3.0) // arXiv recommends max 3 req/sec
	v.SetDefault("research_sources.arxiv.burst_size", 3)

	// Research sources defaults - Semantic Scholar
	v.SetDefault("research_sources.semantic_scholar.enabled", true)
	v.SetDefault("research_sources.semantic_scholar.base_url", "https://api.semanticscholar.org/graph/v1")
	v.SetDefault("research_sources.semantic_scholar.timeout", "15s")
	v.SetDefault("research_sources.semantic_scholar.rate_limit", 1.0)
	v.SetDefault("research_sources.semantic_scholar.burst_size", 1)

	// Research sources defaults - OpenAlex
	v.SetDefault("research_sources.openalex.enabled", true)
	v.SetDefault("research_sources.openalex.base_url", "https://api.openalex.org")
	v.SetDefault("research_sources.openalex.email", "")
	v.SetDefault("research_sources.openalex.timeout", "15s")
	v.SetDefault("research_sources.openalex.rate_limit", 10.0)
	v.SetDefault("research_sources.openalex.burst_size", 10)

	// Research sources defaults - Crossref
	v.SetDefault("research_sources.crossref.enabled", true)
	v.SetDefault("research_sources.crossref.base_url", "https://api.crossref.org")
	v.SetDefault("research_sources.crossref.email", "")
	v.SetDefault("research_sources.crossref.timeout", "15s")
	v.SetDefault("research_sources.crossref.rate_limit", 5.0)
	v.SetDefault("research_sources.crossref.burst_size", 5)

	// Research sources defaults - PubMed
	v.SetDefault("research_sources.pubmed.enabled", true)
	v.SetDefault("research_sources.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("research_sources.pubmed.timeout", "15s")
	v.SetDefault("research_sources.pubmed.rate_limit", 3.0) // NCBI recommends max 3 req/sec without API key
	v.SetDefault("research_sources.pubmed.burst_size", 3)

	// Expert sources defaults - YouTube (requires API key)
	v.SetDefault("expert_sources.youtube.enabled", true)
	v.SetDefault("expert_sources.youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("expert_sources.youtube.timeout", "15s")
	v.SetDefault("expert_sources.youtube.rate_limit", 2.0)
	v.SetDefault("expert_sources.youtube.burst_size", 2)

	// Expert sources defaults - Eventbrite (requires OAuth token)
	v.SetDefault("expert_sources.eventbrite.enabled", true)
	v.SetDefault("expert_sources.eventbrite.base_url", "https://www.eventbriteapi.com/v3")
	v.SetDefault("expert_sources.eventbrite.timeout", "15s")
	v.SetDefault("expert_sources.eventbrite.rate_limit", 2.0)
	v.SetDefault("expert_sources.eventbrite.burst_size", 2)

	// Expert sources defaults - OpenLearn (HTML scrape, keep the rate low)
	v.SetDefault("expert_sources.openlearn.enabled", true)
	v.SetDefault("expert_sources.openlearn.base_url", "https://www.open.edu/openlearn")
	v.SetDefault("expert_sources.openlearn.timeout", "20s")
	v.SetDefault("expert_sources.openlearn.rate_limit", 0.5)
	v.SetDefault("expert_sources.openlearn.burst_size", 1)

	v.SetDefault("expert_sources.curated_path", "")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Server.HTTPPort)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read/write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive when the cache is enabled")
		}
		if c.Cache.Size <= 0 {
			return fmt.Errorf("cache size must be positive when the cache is enabled")
		}
	}

	if c.Aggregation.SourceTimeout <= 0 {
		return fmt.Errorf("aggregation source timeout must be positive")
	}

	for name, src := range map[string]SourceConfig{
		"arxiv":            c.ResearchSources.ArXiv,
		"semantic_scholar": c.ResearchSources.SemanticScholar,
		"openalex":         c.ResearchSources.OpenAlex,
		"crossref":         c.ResearchSources.Crossref,
		"pubmed":           c.ResearchSources.PubMed,
		"youtube":          c.ExpertSources.YouTube,
		"eventbrite":       c.ExpertSources.Eventbrite,
		"openlearn":        c.ExpertSources.OpenLearn,
	} {
		if !src.Enabled {
			continue
		}
		if src.Timeout <= 0 {
			return fmt.Errorf("source %s: timeout must be positive", name)
		}
		if src.RateLimit <= 0 {
			return fmt.Errorf("source %s: rate limit must be positive", name)
		}
	}

	return nil
}
