// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package cache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tunescale/tunescale/internal/config"
)

// clockStore wraps entries with a controllable storedAt so tests can age
// them without sleeping.
type clockStore struct {
	mu      sync.Mutex
	values  map[string][]byte
	stamps  map[string]time.Time
	deletes int
}

func newClockStore() *clockStore {
	return &clockStore{
		values: make(map[string][]byte),
		stamps: make(map[string]time.Time),
	}
}

func (s *clockStore) Get(key string) ([]byte, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return v, s.stamps[key], true
}

func (s *clockStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.stamps[key] = time.Now()
	return nil
}

func (s *clockStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	delete(s.stamps, key)
	s.deletes++
}

func (s *clockStore) Close() error { return nil }

func (s *clockStore) age(key string, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamps[key] = s.stamps[key].Add(-by)
}

func testCache(store Store) *Cache {
	return New(&config.CacheConfig{TTL: time.Minute, StaleTTL: 5 * time.Minute}, store)
}

func fillWith(value []byte, calls *int) FillFunc {
	return func(context.Context) ([]byte, error) {
		*calls++
		return value, nil
	}
}

func TestCacheMissFillsInline(t *testing.T) {
	store := newClockStore()
	c := testCache(store)

	calls := 0
	got, stale, err := c.Get(context.Background(), "k", fillWith([]byte("v1"), &calls))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stale {
		t.Error("stale = true on a filled miss")
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("value = %q, want %q", got, "v1")
	}
	if calls != 1 {
		t.Errorf("fill calls = %d, want 1", calls)
	}
}

func TestCacheFreshHitSkipsFill(t *testing.T) {
	store := newClockStore()
	c := testCache(store)

	calls := 0
	fill := fillWith([]byte("v1"), &calls)
	if _, _, err := c.Get(context.Background(), "k", fill); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got, stale, err := c.Get(context.Background(), "k", fill)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stale {
		t.Error("stale = true on a fresh hit")
	}
	if !bytes.Equal(got, []byte("v1")) || calls != 1 {
		t.Errorf("value = %q, fill calls = %d; want cached v1 with 1 call", got, calls)
	}
}

func TestCacheStaleServesAndRevalidates(t *testing.T) {
	store := newClockStore()
	c := testCache(store)

	calls := 0
	if _, _, err := c.Get(context.Background(), "k", fillWith([]byte("v1"), &calls)); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	store.age("k", 2*time.Minute) // past TTL, within the stale window

	got, stale, err := c.Get(context.Background(), "k", fillWith([]byte("v2"), &calls))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !stale {
		t.Error("stale = false, want stale serve")
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Errorf("value = %q, want the stale %q", got, "v1")
	}

	// The background refresh lands the new value.
	deadline := time.After(2 * time.Second)
	for {
		if v, _, ok := store.Get("k"); ok && bytes.Equal(v, []byte("v2")) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("revalidation never stored the fresh value")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestCacheExpiredTreatedAsMiss(t *testing.T) {
	store := newClockStore()
	c := testCache(store)

	calls := 0
	if _, _, err := c.Get(context.Background(), "k", fillWith([]byte("v1"), &calls)); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	store.age("k", time.Hour) // far past TTL + StaleTTL

	got, stale, err := c.Get(context.Background(), "k", fillWith([]byte("v2"), &calls))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stale {
		t.Error("stale = true, want inline refill")
	}
	if !bytes.Equal(got, []byte("v2")) {
		t.Errorf("value = %q, want refilled %q", got, "v2")
	}
	if store.deletes == 0 {
		t.Error("expired entry was not evicted")
	}
}

func TestCacheFillErrorPropagates(t *testing.T) {
	store := newClockStore()
	c := testCache(store)

	wantErr := errors.New("aggregation failed")
	_, _, err := c.Get(context.Background(), "k", func(context.Context) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Get() error = %v, want fill error", err)
	}
}

func TestKeyTenantSeparation(t *testing.T) {
	a := Key("org-1", "viewer", "classification-health")
	b := Key("org-2", "viewer", "classification-health")
	c := Key("org-1", "manager", "classification-health")

	if a == b {
		t.Error("keys collide across orgs")
	}
	if a == c {
		t.Error("keys collide across roles")
	}
	if a != Key("org-1", "viewer", "classification-health") {
		t.Error("key derivation is not deterministic")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	defer func() { _ = store.Close() }()

	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, storedAt, ok := store.Get("k")
	if !ok || !bytes.Equal(v, []byte("v")) {
		t.Fatalf("Get() = %q, %v, want stored value", v, ok)
	}
	if storedAt.IsZero() {
		t.Error("storedAt is zero")
	}

	store.Delete("k")
	if _, _, ok := store.Get("k"); ok {
		t.Error("Get() after Delete still returns the value")
	}
}
