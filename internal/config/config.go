package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/DanielAquino2003/TrendWriter/pkg/trend"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig         `yaml:"database"`
	Server    ServerConfig           `yaml:"server"`
	Logging   LoggingConfig          `yaml:"logging"`
	Schedule  ScheduleConfig         `yaml:"schedule"`
	Sources   SourcesConfig          `yaml:"sources"`
	Normalize trend.NormalizerConfig `yaml:"normalize"`
	Scoring   trend.ScoringConfig    `yaml:"scoring"`
	Scan      ScanConfig             `yaml:"scan"`
	Selector  trend.SelectorConfig   `yaml:"selector"`
	Retention RetentionConfig        `yaml:"retention"`
	Generator GeneratorConfig        `yaml:"generator"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ScheduleConfig holds cron specs for the recurring jobs.
type ScheduleConfig struct {
	Scan    string `yaml:"scan"`
	Process string `yaml:"process"`
	Stats   string `yaml:"stats"`
	Sweep   string `yaml:"sweep"`
}

// SourcesConfig enables and parameterizes the feed adapters.
type SourcesConfig struct {
	HackerNews   EnabledConfig `yaml:"hackernews"`
	Reddit       RedditConfig  `yaml:"reddit"`
	DevTo        EnabledConfig `yaml:"devto"`
	RSS          RSSConfig     `yaml:"rss"`
	FetchTimeout string        `yaml:"fetch_timeout"`
}

// EnabledConfig is a bare on/off switch for a source.
type EnabledConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RedditConfig lists the subreddits scanned as independent sources.
type RedditConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Subreddits []string `yaml:"subreddits"`
}

// RSSConfig lists named RSS feeds.
type RSSConfig struct {
	Enabled bool       `yaml:"enabled"`
	Feeds   []FeedItem `yaml:"feeds"`
}

// FeedItem is a single RSS feed entry; Name doubles as the source id.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ScanConfig configures the persistence gate and dedup window.
type ScanConfig struct {
	MinSaveScore     int     `yaml:"min_save_score"`
	DedupThreshold   float64 `yaml:"dedup_threshold"`
	DedupWindowHours int     `yaml:"dedup_window_hours"`
	DedupMaxRecords  int     `yaml:"dedup_max_records"`
	Category         string  `yaml:"category"`
}

// RetentionConfig configures the daily sweep of old processed trends.
type RetentionConfig struct {
	MaxAgeHours int      `yaml:"max_age_hours"`
	Tiers       []string `yaml:"tiers"`
}

// GeneratorConfig configures the Groq article generator.
type GeneratorConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	Models         []string `yaml:"models"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// ParseFetchTimeout returns the per-source fetch timeout.
func (s SourcesConfig) ParseFetchTimeout() time.Duration {
	d, err := time.ParseDuration(s.FetchTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TrendScanConfig converts the yaml scan settings into the core's form.
func (c *Config) TrendScanConfig() trend.ScanConfig {
	return trend.ScanConfig{
		MinSaveScore:    c.Scan.MinSaveScore,
		DedupWindow:     time.Duration(c.Scan.DedupWindowHours) * time.Hour,
		DedupMaxRecords: c.Scan.DedupMaxRecords,
		Category:        c.Scan.Category,
	}
}

// RetentionMaxAge returns the sweep age cutoff as a duration.
func (c *Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeHours) * time.Hour
}

// GeneratorTimeout returns the generation call timeout.
func (c *Config) GeneratorTimeout() time.Duration {
	if c.Generator.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Generator.TimeoutSeconds) * time.Second
}

// Default returns a Config with production defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./trendwriter.db"},
		Server:   ServerConfig{Port: 8080},
		Logging:  LoggingConfig{Level: "info"},
		Schedule: ScheduleConfig{
			Scan:    "*/1 * * * *",
			Process: "*/10 * * * *",
			Stats:   "*/10 * * * *",
			Sweep:   "0 2 * * *",
		},
		Sources: SourcesConfig{
			HackerNews: EnabledConfig{Enabled: true},
			Reddit: RedditConfig{
				Enabled:    true,
				Subreddits: []string{"technology", "programming", "webdev", "MachineLearning"},
			},
			DevTo: EnabledConfig{Enabled: true},
			RSS: RSSConfig{
				Enabled: true,
				Feeds: []FeedItem{
					{Name: "techcrunch", URL: "https://techcrunch.com/feed/"},
					{Name: "arstechnica", URL: "https://feeds.arstechnica.com/arstechnica/technology-lab"},
					{Name: "coindesk", URL: "https://www.coindesk.com/arc/outboundfeeds/rss/"},
				},
			},
			FetchTimeout: "10s",
		},
		Normalize: trend.DefaultNormalizerConfig(),
		Scoring:   trend.DefaultScoringConfig(),
		Scan: ScanConfig{
			MinSaveScore:     50,
			DedupThreshold:   0.75,
			DedupWindowHours: 48,
			DedupMaxRecords:  200,
			Category:         "tech",
		},
		Selector: trend.DefaultSelectorConfig(),
		Retention: RetentionConfig{
			MaxAgeHours: 72,
			Tiers:       []string{trend.TierLow, trend.TierStandard},
		},
		Generator: GeneratorConfig{
			Models:         nil, // empty uses generate.DefaultModels
			TimeoutSeconds: 60,
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRENDWRITER_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRENDWRITER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.Generator.APIKey = v
	}
}
