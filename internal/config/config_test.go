// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 3861 {
		t.Errorf("Server.Port = %d, want 3861", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/tunescale.duckdb" {
		t.Errorf("Database.Path = %q, want /data/tunescale.duckdb", cfg.Database.Path)
	}
	if cfg.Cache.TTL != time.Minute || cfg.Cache.StaleTTL != 5*time.Minute {
		t.Errorf("Cache TTLs = %v/%v, want 1m/5m", cfg.Cache.TTL, cfg.Cache.StaleTTL)
	}
	if cfg.Search.Enabled {
		t.Error("Search.Enabled = true, want disabled by default")
	}
	if cfg.Classify.HighThreshold != 3 || cfg.Classify.MediumThreshold != 2 || cfg.Classify.LowThreshold != 1 {
		t.Errorf("thresholds = %d/%d/%d, want 3/2/1",
			cfg.Classify.HighThreshold, cfg.Classify.MediumThreshold, cfg.Classify.LowThreshold)
	}
	if cfg.Recommend.AutoShortlistThreshold != 7.5 {
		t.Errorf("AutoShortlistThreshold = %v, want 7.5", cfg.Recommend.AutoShortlistThreshold)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "port out of range",
			modify:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name: "production requires a jwt secret",
			modify: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.JWTSecret = ""
			},
			wantErr: true,
		},
		{
			name: "production with secret is valid",
			modify: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.JWTSecret = "s3cret"
			},
		},
		{
			name:    "unknown cache store",
			modify:  func(c *Config) { c.Cache.Store = "redis" },
			wantErr: true,
		},
		{
			name: "search enabled without url",
			modify: func(c *Config) {
				c.Search.Enabled = true
				c.Search.URL = ""
			},
			wantErr: true,
		},
		{
			name: "unordered classifier thresholds",
			modify: func(c *Config) {
				c.Classify.MediumThreshold = 5
			},
			wantErr: true,
		},
		{
			name:    "zero low threshold",
			modify:  func(c *Config) { c.Classify.LowThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive match weight",
			modify:  func(c *Config) { c.Classify.PhraseMatchWeight = 0 },
			wantErr: true,
		},
		{
			name: "all scoring weights zero",
			modify: func(c *Config) {
				c.Recommend.GenreWeight = 0
				c.Recommend.PlatformWeight = 0
				c.Recommend.SuccessWeight = 0
				c.Recommend.FeedbackWeight = 0
			},
			wantErr: true,
		},
		{
			name:    "negative scoring weight",
			modify:  func(c *Config) { c.Recommend.SuccessWeight = -0.1 },
			wantErr: true,
		},
		{
			name:    "shortlist threshold above scale",
			modify:  func(c *Config) { c.Recommend.AutoShortlistThreshold = 11 },
			wantErr: true,
		},
		{
			name:    "max limit below default limit",
			modify:  func(c *Config) { c.Recommend.MaxLimit = 5 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TUNESCALE_SERVER_PORT", "server.port"},
		{"TUNESCALE_CLASSIFY_HIGH_THRESHOLD", "classify.high_threshold"},
		{"TUNESCALE_SECURITY_JWT_SECRET", "security.jwt_secret"},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
