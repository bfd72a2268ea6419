// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package config provides layered configuration for Tunescale using Koanf:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Tunescale server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Security  SecurityConfig  `koanf:"security"`
	Cache     CacheConfig     `koanf:"cache"`
	Events    EventsConfig    `koanf:"events"`
	Search    SearchConfig    `koanf:"search"`
	Classify  ClassifyConfig  `koanf:"classify"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path. Empty string opens an in-memory
	// database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB thread count; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds authentication, authorization and rate limiting.
type SecurityConfig struct {
	// JWTSecret signs and verifies session bearer tokens (HS256).
	JWTSecret string `koanf:"jwt_secret"`
	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	// CasbinModelPath and CasbinPolicyPath override the embedded RBAC
	// model and policy when set.
	CasbinModelPath  string `koanf:"casbin_model_path"`
	CasbinPolicyPath string `koanf:"casbin_policy_path"`
}

// CacheConfig holds the read-view cache settings.
type CacheConfig struct {
	// TTL is how long an entry is fresh.
	TTL time.Duration `koanf:"ttl"`
	// StaleTTL is how long past freshness a stale entry may still be
	// served while a background refresh runs.
	StaleTTL time.Duration `koanf:"stale_ttl"`
	// Store selects the backing store: "memory" or "badger".
	Store string `koanf:"store"`
	// BadgerPath is the on-disk location for the badger store.
	BadgerPath string `koanf:"badger_path"`
}

// EventsConfig holds domain-event publishing settings.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
	// NATSURL is the JetStream endpoint. Ignored when EmbeddedServer is set.
	NATSURL string `koanf:"nats_url"`
	// EmbeddedServer runs an in-process NATS server for single-binary
	// deployments.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`
}

// SearchConfig holds the external search resolver settings.
type SearchConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	APIKey  string `koanf:"api_key"`
	// Timeout bounds one resolver call; exceeding it is recorded as a
	// per-item failure inside a batch.
	Timeout time.Duration `koanf:"timeout"`
	// RequestsPerSecond rate-limits outbound resolver calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	// BreakerMaxFailures trips the circuit breaker after this many
	// consecutive failures.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenPeriod  time.Duration `koanf:"breaker_open_period"`
}

// ClassifyConfig holds the heuristic classifier constants. The scoring
// weights and thresholds are deliberate heuristics without documented
// derivation; they are configuration rather than literals so deployments
// can tune them.
type ClassifyConfig struct {
	// EntityMatchWeight scores an entity-substring keyword match.
	EntityMatchWeight int `koanf:"entity_match_weight"`
	// PhraseMatchWeight scores a whole-title whole-word match with a
	// multi-word keyword.
	PhraseMatchWeight int `koanf:"phrase_match_weight"`
	// DescriptorMatchWeight scores a short single-word genre descriptor
	// (length <= DescriptorMaxLen, no space).
	DescriptorMatchWeight int `koanf:"descriptor_match_weight"`
	// DescriptorMaxLen bounds what counts as a generic descriptor keyword.
	DescriptorMaxLen int `koanf:"descriptor_max_len"`
	// HighThreshold, MediumThreshold, LowThreshold drive the confidence
	// decision: >= high and strictly ahead of the runner-up is high,
	// >= medium and strictly ahead is medium, >= low with a zero
	// runner-up is low, anything else escalates.
	HighThreshold   int `koanf:"high_threshold"`
	MediumThreshold int `koanf:"medium_threshold"`
	LowThreshold    int `koanf:"low_threshold"`
	// ItemTimeout bounds classification of a single campaign including
	// the search escalation.
	ItemTimeout time.Duration `koanf:"item_timeout"`
	// BatchLimit caps how many campaigns one run processes.
	BatchLimit int `koanf:"batch_limit"`
	// TaxonomyPath overrides the embedded genre taxonomy with a YAML file.
	TaxonomyPath string `koanf:"taxonomy_path"`
}

// RecommendConfig holds the recommendation engine tuning. Weights are
// normalized at runtime and need not sum to 1.
type RecommendConfig struct {
	GenreWeight    float64 `koanf:"genre_weight"`
	PlatformWeight float64 `koanf:"platform_weight"`
	SuccessWeight  float64 `koanf:"success_weight"`
	FeedbackWeight float64 `koanf:"feedback_weight"`
	// FeedbackSmoothing dampens the swipe signal for creators with few
	// observations.
	FeedbackSmoothing float64 `koanf:"feedback_smoothing"`
	// NeutralGenreAffinity is used when the campaign has no genre label.
	NeutralGenreAffinity float64 `koanf:"neutral_genre_affinity"`
	// AutoShortlistThreshold is the fit-score cutoff (0-10 scale) above
	// which hybrid risk mode auto-shortlists a candidate.
	AutoShortlistThreshold float64 `koanf:"auto_shortlist_threshold"`
	// DefaultCreatorRate estimates per-post spend for creators with no
	// posting history.
	DefaultCreatorRate float64 `koanf:"default_creator_rate"`
	// DefaultLimit and MaxLimit bound the result size.
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`
	// GenerateTimeout bounds one engine invocation.
	GenerateTimeout time.Duration `koanf:"generate_timeout"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        3861,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/tunescale.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Cache: CacheConfig{
			TTL:        time.Minute,
			StaleTTL:   5 * time.Minute,
			Store:      "memory",
			BadgerPath: "/data/cache",
		},
		Events: EventsConfig{
			Enabled:        false,
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats/jetstream",
		},
		Search: SearchConfig{
			Enabled:            false,
			Timeout:            10 * time.Second,
			RequestsPerSecond:  2,
			BreakerMaxFailures: 5,
			BreakerOpenPeriod:  30 * time.Second,
		},
		Classify: ClassifyConfig{
			EntityMatchWeight:     3,
			PhraseMatchWeight:     2,
			DescriptorMatchWeight: 1,
			DescriptorMaxLen:      6,
			HighThreshold:         3,
			MediumThreshold:       2,
			LowThreshold:          1,
			ItemTimeout:           15 * time.Second,
			BatchLimit:            1000,
		},
		Recommend: RecommendConfig{
			GenreWeight:            0.4,
			PlatformWeight:         0.15,
			SuccessWeight:          0.25,
			FeedbackWeight:         0.2,
			FeedbackSmoothing:      2.0,
			NeutralGenreAffinity:   0.5,
			AutoShortlistThreshold: 7.5,
			DefaultCreatorRate:     250.0,
			DefaultLimit:           20,
			MaxLimit:               100,
			GenerateTimeout:        10 * time.Second,
		},
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Environment == "production" && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required in production")
	}
	if err := c.Classify.Validate(); err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	switch c.Cache.Store {
	case "memory", "badger":
	default:
		return fmt.Errorf("cache.store must be memory or badger, got %q", c.Cache.Store)
	}
	if c.Search.Enabled && c.Search.URL == "" {
		return fmt.Errorf("search.url is required when search is enabled")
	}
	return nil
}

// Validate checks classifier constants.
func (c *ClassifyConfig) Validate() error {
	if c.HighThreshold < c.MediumThreshold || c.MediumThreshold < c.LowThreshold {
		return fmt.Errorf("thresholds must be ordered high >= medium >= low")
	}
	if c.LowThreshold < 1 {
		return fmt.Errorf("low_threshold must be >= 1")
	}
	if c.EntityMatchWeight <= 0 || c.PhraseMatchWeight <= 0 || c.DescriptorMatchWeight <= 0 {
		return fmt.Errorf("match weights must be positive")
	}
	if c.BatchLimit <= 0 {
		return fmt.Errorf("batch_limit must be positive")
	}
	return nil
}

// Validate checks engine tuning.
func (c *RecommendConfig) Validate() error {
	sum := c.GenreWeight + c.PlatformWeight + c.SuccessWeight + c.FeedbackWeight
	if sum <= 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	if c.GenreWeight < 0 || c.PlatformWeight < 0 || c.SuccessWeight < 0 || c.FeedbackWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.AutoShortlistThreshold < 0 || c.AutoShortlistThreshold > 10 {
		return fmt.Errorf("auto_shortlist_threshold must be in [0,10]")
	}
	if c.DefaultLimit <= 0 || c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("limits must satisfy 0 < default_limit <= max_limit")
	}
	return nil
}
