// Package config manages application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all settings for a transcript archiving run. It is passed
// explicitly into the components that need it; nothing reads the
// environment past Load.
type Config struct {
	// APIKey authenticates against the YouTube Data API.
	APIKey string `toml:"api_key"`
	// OutputDir is where transcript artifacts and the index are written.
	OutputDir string `toml:"output_dir"`

	// MonthsBack is the lookback window in calendar months.
	MonthsBack int `toml:"months_back"`
	// Languages are the preferred transcript languages, in order.
	Languages []string `toml:"languages"`
	// MinDurationSec drops videos shorter than this many seconds (0 = no bound).
	MinDurationSec int `toml:"min_duration"`
	// MaxDurationSec drops videos longer than this many seconds (0 = no bound).
	MaxDurationSec int `toml:"max_duration"`

	// BatchSize is the number of transcript fetches per batch.
	BatchSize int `toml:"batch_size"`
	// BatchPauseSec is the pause between batches, in seconds.
	BatchPauseSec int `toml:"batch_pause"`
	// DelaySec is the delay between consecutive fetches, in seconds.
	DelaySec float64 `toml:"delay"`

	// MaxRetries bounds rate-limit retries per transcript fetch.
	MaxRetries int `toml:"max_retries"`
	// InitialBackoffSec is the first rate-limit backoff, in seconds.
	InitialBackoffSec int `toml:"initial_backoff"`

	// SkipFetched consults the history database and skips videos already
	// archived by an earlier run.
	SkipFetched bool `toml:"skip_fetched"`
	// HistoryPath overrides the history database location. Empty means
	// podscribe.db inside the output directory.
	HistoryPath string `toml:"history_path"`
}

// DefaultConfig returns configuration with the stock pacing and retry
// policy.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:         "./transcripts",
		MonthsBack:        3,
		Languages:         []string{"en"},
		BatchSize:         10,
		BatchPauseSec:     30,
		DelaySec:          2,
		MaxRetries:        5,
		InitialBackoffSec: 5,
	}
}

// Load loads configuration from the config file and environment variables
// over the defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional.
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	return cfg, nil
}

// loadFromFile reads podscribe.toml from the current directory or the user
// config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"podscribe.toml",
		filepath.Join(os.Getenv("HOME"), ".config", "podscribe", "podscribe.toml"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := toml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PODSCRIBE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("PODSCRIBE_MONTHS_BACK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MonthsBack = n
		}
	}
	if v := os.Getenv("PODSCRIBE_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("PODSCRIBE_BATCH_PAUSE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchPauseSec = n
		}
	}
	if v := os.Getenv("PODSCRIBE_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.DelaySec = f
		}
	}
	if v := os.Getenv("PODSCRIBE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("PODSCRIBE_SKIP_FETCHED"); v != "" {
		c.SkipFetched = v == "true" || v == "1"
	}
}

// Validate checks that configuration values are valid and consistent. The
// API key is checked here so a missing credential fails before any network
// activity.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key required (set YOUTUBE_API_KEY)")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.MonthsBack <= 0 {
		return fmt.Errorf("months_back must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.BatchPauseSec < 0 {
		return fmt.Errorf("batch_pause must be non-negative")
	}
	if c.DelaySec < 0 {
		return fmt.Errorf("delay must be non-negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.InitialBackoffSec <= 0 {
		return fmt.Errorf("initial_backoff must be positive")
	}
	if c.MinDurationSec < 0 || c.MaxDurationSec < 0 {
		return fmt.Errorf("duration bounds must be non-negative")
	}
	if c.MinDurationSec > 0 && c.MaxDurationSec > 0 && c.MinDurationSec > c.MaxDurationSec {
		return fmt.Errorf("min_duration must be <= max_duration")
	}
	return nil
}

// HistoryDBPath returns the effective history database location.
func (c *Config) HistoryDBPath() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(c.OutputDir, "podscribe.db")
}
