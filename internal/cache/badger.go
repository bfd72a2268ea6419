// Tunescale - Creator Marketing Analytics and Campaign Scoring
// Copyright 2026 Tunescale Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunescale/tunescale

package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tunescale/tunescale/internal/logging"
)

// BadgerStore persists cache entries across restarts. Values carry an
// 8-byte big-endian unix-nano prefix recording when they were stored, so
// freshness grading survives the round trip. Badger's own entry TTL acts
// as the hard eviction bound.
type BadgerStore struct {
	db     *badger.DB
	maxAge time.Duration
}

// NewBadgerStore opens (or creates) the on-disk store at path.
func NewBadgerStore(path string, maxAge time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithCompactL0OnClose(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	logging.Info().Str("path", path).Msg("badger cache store ready")
	return &BadgerStore{db: db, maxAge: maxAge}, nil
}

func (s *BadgerStore) Get(key string) ([]byte, time.Time, bool) {
	var (
		value    []byte
		storedAt time.Time
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			if len(raw) < 8 {
				return badger.ErrKeyNotFound
			}
			storedAt = time.Unix(0, int64(binary.BigEndian.Uint64(raw[:8])))
			value = append([]byte(nil), raw[8:]...)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			logging.Warn().Err(err).Str("key", key).Msg("badger read failed")
		}
		return nil, time.Time{}, false
	}
	return value, storedAt, true
}

func (s *BadgerStore) Set(key string, value []byte) error {
	raw := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(raw[:8], uint64(time.Now().UnixNano()))
	copy(raw[8:], value)

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if s.maxAge > 0 {
			entry = entry.WithTTL(s.maxAge)
		}
		return txn.SetEntry(entry)
	})
}

func (s *BadgerStore) Delete(key string) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
