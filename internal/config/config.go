// Package config loads all runtime configuration from the environment once
// at startup. Components never read ambient environment state themselves;
// they receive the relevant sub-config explicitly, which keeps tests
// deterministic.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	SerpAPI  SerpAPIConfig
	Database DatabaseConfig
	Places   PlacesConfig
	LLM      LLMConfig
	Archive  ArchiveConfig
	Pipeline PipelineConfig
	Metrics  MetricsConfig
	Logging  LoggingConfig
}

// SerpAPIConfig holds the search provider credentials.
type SerpAPIConfig struct {
	APIKey string
}

// DatabaseConfig holds the store connection settings.
type DatabaseConfig struct {
	URL string
}

// PlacesConfig holds the optional Places enrichment settings. Empty APIKey
// disables the adapter.
type PlacesConfig struct {
	APIKey   string
	CacheTTL time.Duration
	CacheMax int
}

// Enabled reports whether the Places adapter should be wired.
func (c PlacesConfig) Enabled() bool { return c.APIKey != "" }

// LLMConfig holds the optional text-completion extractor settings. Empty
// BaseURL and APIKey disable the adapter.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Enabled reports whether the extractor should be wired.
func (c LLMConfig) Enabled() bool { return c.APIKey != "" || c.BaseURL != "" }

// ArchiveConfig holds the optional S3 raw-payload archive settings. Empty
// Bucket disables archiving.
type ArchiveConfig struct {
	Bucket string
	Prefix string
}

// Enabled reports whether raw payloads should be archived.
func (c ArchiveConfig) Enabled() bool { return c.Bucket != "" }

// PipelineConfig holds batch-run tuning.
type PipelineConfig struct {
	CitiesPath  string
	MaxPages    int
	MaxCities   int
	DaysForward int
	Pacing      time.Duration
}

// MetricsConfig holds the optional Prometheus listen address. Empty Addr
// disables the endpoint; a batch run does not need one.
type MetricsConfig struct {
	Addr string
}

// Enabled reports whether the metrics endpoint should be served.
func (c MetricsConfig) Enabled() bool { return c.Addr != "" }

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

const (
	defaultCitiesPath  = "cities.csv"
	defaultMaxPages    = 5
	defaultDaysForward = 30
	defaultPacing      = 2 * time.Second

	defaultPlacesCacheTTL = 24 * time.Hour
	defaultPlacesCacheMax = 10000

	defaultLogFormat = "json"
)

// Load reads configuration from environment variables. Missing credentials
// for the search API or the store are configuration errors: the caller must
// abort the run, not continue degraded.
func Load() (Config, error) {
	cfg := Config{
		SerpAPI:  SerpAPIConfig{APIKey: os.Getenv("SERPAPI_API_KEY")},
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Places: PlacesConfig{
			APIKey:   os.Getenv("GOOGLE_PLACES_API_KEY"),
			CacheTTL: defaultPlacesCacheTTL,
			CacheMax: defaultPlacesCacheMax,
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
			Model:   getEnv("LLM_MODEL", "qwen2.5-32b-instruct"),
		},
		Archive: ArchiveConfig{
			Bucket: os.Getenv("ARCHIVE_S3_BUCKET"),
			Prefix: getEnv("ARCHIVE_S3_PREFIX", "raw"),
		},
		Pipeline: PipelineConfig{
			CitiesPath:  getEnv("CITIES_CSV", defaultCitiesPath),
			MaxPages:    defaultMaxPages,
			DaysForward: defaultDaysForward,
			Pacing:      defaultPacing,
		},
		Metrics: MetricsConfig{Addr: os.Getenv("METRICS_ADDR")},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
	}

	if cfg.SerpAPI.APIKey == "" {
		return Config{}, fmt.Errorf("SERPAPI_API_KEY is required")
	}
	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if v := os.Getenv("PIPELINE_MAX_PAGES"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIPELINE_MAX_PAGES: %w", err)
		}
		cfg.Pipeline.MaxPages = n
	}

	if v := os.Getenv("PIPELINE_MAX_CITIES"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIPELINE_MAX_CITIES: %w", err)
		}
		cfg.Pipeline.MaxCities = n
	}

	if v := os.Getenv("PIPELINE_DAYS_FORWARD"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIPELINE_DAYS_FORWARD: %w", err)
		}
		cfg.Pipeline.DaysForward = n
	}

	if v := os.Getenv("PIPELINE_PACING_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PIPELINE_PACING_SECONDS: %w", err)
		}
		cfg.Pipeline.Pacing = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
