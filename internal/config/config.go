// Package config defines process configuration and its loading.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hubboard/internal/domain/benchmark"
)

// Benchmark is one catalog entry as written in the config file.
type Benchmark struct {
	Key     string   `koanf:"key"`
	Label   string   `koanf:"label"`
	Aliases []string `koanf:"aliases"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// APIBase is the REST API root and HubURL the root for file downloads and links.
	APIBase string `koanf:"api_base"`
	HubURL  string `koanf:"hub_url"`

	// Token is the optional bearer credential. HF_TOKEN is used when empty.
	Token     string `koanf:"token"`
	UserAgent string `koanf:"user_agent"`

	// RequestTimeoutMS bounds every hub call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// Evals pipeline.
	PipelineFilter     string `koanf:"pipeline_filter"`
	TrendingLimit      int    `koanf:"trending_limit"`
	TrendingFetchLimit int    `koanf:"trending_fetch_limit"`
	PRScanLimit        int    `koanf:"pr_scan_limit"`

	// Points pipeline.
	Organization          string `koanf:"organization"`
	DiscussionLimit       int    `koanf:"discussion_limit"`
	OrgRepoLimit          int    `koanf:"org_repo_limit"`
	ExternalTrendingLimit int    `koanf:"external_trending_limit"`

	// Publish targets and local output.
	EvalsDataset  string `koanf:"evals_dataset"`
	PointsDataset string `koanf:"points_dataset"`
	OutputPath    string `koanf:"output_path"`

	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string `koanf:"pushgateway_url"`

	// Benchmarks overrides the built-in catalog. Empty means built-in.
	Benchmarks []Benchmark `koanf:"benchmarks"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		APIBase:               "https://huggingface.co/api",
		HubURL:                "https://huggingface.co",
		UserAgent:             "hubboard/1.0",
		RequestTimeoutMS:      30_000,
		PipelineFilter:        "text-generation",
		TrendingLimit:         50,
		TrendingFetchLimit:    100,
		PRScanLimit:           40,
		Organization:          "hf-skills",
		DiscussionLimit:       100,
		OrgRepoLimit:          1000,
		ExternalTrendingLimit: 50,
		EvalsDataset:          "hf-skills/evals-leaderboard",
		PointsDataset:         "hf-skills/hackers-leaderboard",
		OutputPath:            "leaderboard.json",
	}
}

// RequestTimeout returns the per-call timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Catalog builds the benchmark catalog, falling back to the built-in one.
func (c *Config) Catalog() (*benchmark.Catalog, error) {
	if len(c.Benchmarks) == 0 {
		return benchmark.Default(), nil
	}
	defs := make([]benchmark.Definition, len(c.Benchmarks))
	for i, b := range c.Benchmarks {
		defs[i] = benchmark.Definition{Key: b.Key, Label: b.Label, Aliases: b.Aliases}
	}
	cat, err := benchmark.NewCatalog(defs...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cat, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.APIBase) == "":
		return fmt.Errorf("%w: api_base must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.HubURL) == "":
		return fmt.Errorf("%w: hub_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Organization) == "":
		return fmt.Errorf("%w: organization must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	}

	limits := []struct {
		name  string
		value int
	}{
		{"trending_limit", c.TrendingLimit},
		{"trending_fetch_limit", c.TrendingFetchLimit},
		{"pr_scan_limit", c.PRScanLimit},
		{"discussion_limit", c.DiscussionLimit},
		{"org_repo_limit", c.OrgRepoLimit},
		{"external_trending_limit", c.ExternalTrendingLimit},
	}
	for _, l := range limits {
		if l.value <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, l.name)
		}
	}
	if c.TrendingFetchLimit < c.TrendingLimit {
		return fmt.Errorf("%w: trending_fetch_limit must be >= trending_limit", ErrInvalidConfig)
	}

	_, err := c.Catalog()
	return err
}
