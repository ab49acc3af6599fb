// Package config holds the persistent tool configuration and its
// on-disk JSON manager.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkocik/stocklens/internal/chart"
	"github.com/mkocik/stocklens/internal/market"
)

type Config struct {
	OutputDir     string `json:"output_dir"`
	DefaultPeriod string `json:"default_period"`

	GeneratePlots   bool `json:"generate_plots"`
	GenerateSummary bool `json:"generate_summary"`

	MaxRetries         int `json:"max_retries"`
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`

	CacheEnabled  bool   `json:"cache_enabled"`
	CacheDir      string `json:"cache_dir"`
	CacheTTLHours int    `json:"cache_ttl_hours"`

	// Categories selected by default when prompts are skipped.
	Categories []string `json:"categories"`

	// ExportFormats chooses the output formats: "excel" and/or "csv".
	ExportFormats []string `json:"export_formats"`

	Chart chart.Settings `json:"chart"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		OutputDir:     "Analysis",
		DefaultPeriod: "2y",

		GeneratePlots:   true,
		GenerateSummary: true,

		MaxRetries:         3,
		HTTPTimeoutSeconds: 30,

		CacheEnabled:  true,
		CacheTTLHours: 24,

		Categories: categoryNames(),

		ExportFormats: []string{"excel"},

		Chart: chart.DefaultSettings(),
	}

	if dir, err := os.UserCacheDir(); err == nil {
		cfg.CacheDir = filepath.Join(dir, "stocklens")
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("STOCKLENS_OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("STOCKLENS_PERIOD"); val != "" {
		c.DefaultPeriod = val
	}
	if val := os.Getenv("STOCKLENS_CACHE_DIR"); val != "" {
		c.CacheDir = val
	}

	if val := os.Getenv("STOCKLENS_CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("STOCKLENS_PLOTS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.GeneratePlots = enabled
		}
	}

	if val := os.Getenv("STOCKLENS_MAX_RETRIES"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRetries = v
		}
	}
	if val := os.Getenv("STOCKLENS_HTTP_TIMEOUT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HTTPTimeoutSeconds = v
		}
	}
	if val := os.Getenv("STOCKLENS_CACHE_TTL_HOURS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CacheTTLHours = v
		}
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if _, err := market.ParsePeriod(c.DefaultPeriod); err != nil {
		return fmt.Errorf("default_period: %w", err)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive")
	}
	if c.CacheTTLHours <= 0 {
		return fmt.Errorf("cache_ttl_hours must be positive")
	}
	for _, name := range c.Categories {
		if _, err := market.ParseCategory(name); err != nil {
			return err
		}
	}
	if len(c.ExportFormats) == 0 {
		return fmt.Errorf("export_formats must not be empty")
	}
	for _, f := range c.ExportFormats {
		if f != "excel" && f != "csv" {
			return fmt.Errorf("unknown export format: %s", f)
		}
	}
	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDir, c.CacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

func categoryNames() []string {
	cats := market.AllCategories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}
