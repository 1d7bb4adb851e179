// Package config loads cfp-events settings.
//
// Settings come from, in increasing priority: built-in defaults, a YAML file
// (~/.config/cfp-events/config.yaml unless a path is given), a .env file in
// the working directory, and CFP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/pfrederiksen/cfp-events/internal/logger"
	"github.com/pfrederiksen/cfp-events/internal/scraper"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
//
// ListingURL is the Sessionize page listing open calls and SiteOrigin is
// prefixed to path-only entry links. Timeout bounds every page fetch,
// MaxEntries caps how many events the text output renders and Concurrency
// bounds parallel detail fetches.
type Config struct {
	ListingURL string        `yaml:"listing_url"`
	SiteOrigin string        `yaml:"site_origin"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`

	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`

	MaxEntries  int           `yaml:"max_entries"`
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ListingURL:  scraper.ListingURL,
		SiteOrigin:  scraper.SiteOrigin,
		UserAgent:   scraper.UserAgent,
		Timeout:     scraper.Timeout,
		DataDir:     "~/.local/share/cfp-events",
		LogLevel:    string(logger.LevelInfo),
		MaxEntries:  15,
		Concurrency: 4,
		CacheTTL:    cfp.DefaultCacheTTL,
	}
}

// DefaultPath returns ~/.config/cfp-events/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}
	return filepath.Join(dir, "cfp-events", "config.yaml"), nil
}

// Load builds the configuration. An empty path means DefaultPath; a missing
// file at the default path is not an error, a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := cfg.loadFile(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := map[string]*string{
		"CFP_LISTING_URL": &c.ListingURL,
		"CFP_SITE_ORIGIN": &c.SiteOrigin,
		"CFP_USER_AGENT":  &c.UserAgent,
		"CFP_DATA_DIR":    &c.DataDir,
		"CFP_LOG_LEVEL":   &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CFP_MAX_ENTRIES": &c.MaxEntries,
		"CFP_CONCURRENCY": &c.Concurrency,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"CFP_TIMEOUT":   &c.Timeout,
		"CFP_CACHE_TTL": &c.CacheTTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
	}

	return nil
}

// Validate checks the configuration for values the CLI cannot work with
func (c *Config) Validate() error {
	if c.ListingURL == "" {
		return errors.New("listing_url is required")
	}
	if !strings.HasPrefix(c.SiteOrigin, "http://") && !strings.HasPrefix(c.SiteOrigin, "https://") {
		return fmt.Errorf("site_origin must be an http(s) URL, got %q", c.SiteOrigin)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxEntries < 0 {
		return errors.New("max_entries must be non-negative")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must be non-negative")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ScraperOptions returns the scraper options matching this configuration
func (c *Config) ScraperOptions() []scraper.Option {
	return []scraper.Option{
		scraper.WithListingURL(c.ListingURL),
		scraper.WithOrigin(c.SiteOrigin),
		scraper.WithUserAgent(c.UserAgent),
		scraper.WithTimeout(c.Timeout),
	}
}
