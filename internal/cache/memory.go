// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	storedAt time.Time
}

// MemoryStore is the default in-process backing store. A janitor
// goroutine evicts entries past their useful lifetime.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	maxAge  time.Duration
	stop    chan struct{}
	once    sync.Once
}

// NewMemoryStore builds a store whose janitor drops entries older than
// maxAge (freshness window plus stale window).
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		maxAge:  maxAge,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *MemoryStore) Get(key string) ([]byte, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.value, e.storedAt, true
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	s.entries[key] = memoryEntry{value: value, storedAt: time.Now()}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) janitor() {
	interval := s.maxAge
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.maxAge)
			s.mu.Lock()
			for key, e := range s.entries {
				if e.storedAt.Before(cutoff) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
