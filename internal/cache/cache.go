// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

// Package cache provides the stale-while-revalidate read-view cache for
// expensive aggregation endpoints. Entries are keyed by org, role, and
// the request parameters, so no cached value can leak across tenants.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/tunescale/tunescale/internal/config"
	"github.com/tunescale/tunescale/internal/logging"
	"github.com/tunescale/tunescale/internal/metrics"
)

// Store is the backing byte store. Implementations report when the value
// was stored so the reader can grade freshness.
type Store interface {
	Get(key string) (value []byte, storedAt time.Time, ok bool)
	Set(key string, value []byte) error
	Delete(key string)
	Close() error
}

// FillFunc computes a fresh value on miss or during revalidation.
type FillFunc func(ctx context.Context) ([]byte, error)

// Cache serves read views with stale-while-revalidate semantics: a fresh
// hit is returned directly, a stale hit is returned immediately while one
// background refresh recomputes the entry, and a miss computes inline.
type Cache struct {
	store Store
	cfg   *config.CacheConfig

	// inFlight dedupes background revalidations per key.
	inFlightMu sync.Mutex
	inFlight   map[string]struct{}
}

// New builds a cache over the configured store.
func New(cfg *config.CacheConfig, store Store) *Cache {
	return &Cache{
		store:    store,
		cfg:      cfg,
		inFlight: make(map[string]struct{}),
	}
}

// Key derives a cache key from the tenant, the caller's role, and the
// canonicalized request parameters.
func Key(orgID, role string, params ...string) string {
	h := sha256.Sum256([]byte(strings.Join(params, "\x00")))
	return orgID + ":" + role + ":" + hex.EncodeToString(h[:8])
}

// Get returns the cached value for key, applying stale-while-revalidate.
// The stale return reports whether the served value was past its
// freshness window.
func (c *Cache) Get(ctx context.Context, key string, fill FillFunc) (value []byte, stale bool, err error) {
	value, storedAt, ok := c.store.Get(key)
	if ok {
		age := time.Since(storedAt)
		if age <= c.cfg.TTL {
			metrics.CacheOperations.WithLabelValues("hit").Inc()
			return value, false, nil
		}
		if age <= c.cfg.TTL+c.cfg.StaleTTL {
			metrics.CacheOperations.WithLabelValues("stale").Inc()
			c.revalidate(key, fill)
			return value, true, nil
		}
		// Expired beyond the stale window; treat as a miss.
		c.store.Delete(key)
	}

	metrics.CacheOperations.WithLabelValues("miss").Inc()
	value, err = fill(ctx)
	if err != nil {
		return nil, false, err
	}
	if setErr := c.store.Set(key, value); setErr != nil {
		logging.Warn().Err(setErr).Str("key", key).Msg("cache write failed")
	}
	return value, false, nil
}

// Invalidate drops the entry for key.
func (c *Cache) Invalidate(key string) {
	c.store.Delete(key)
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// revalidate refreshes key in the background, at most once concurrently
// per key. Refresh failures are logged and the stale entry is retained.
func (c *Cache) revalidate(key string, fill FillFunc) {
	c.inFlightMu.Lock()
	if _, busy := c.inFlight[key]; busy {
		c.inFlightMu.Unlock()
		return
	}
	c.inFlight[key] = struct{}{}
	c.inFlightMu.Unlock()

	go func() {
		defer func() {
			c.inFlightMu.Lock()
			delete(c.inFlight, key)
			c.inFlightMu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		value, err := fill(ctx)
		if err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("cache revalidation failed")
			return
		}
		if err := c.store.Set(key, value); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}()
}
