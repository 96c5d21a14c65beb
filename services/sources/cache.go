// Copyright (C) 2026 Lorekeep AI (oss@lorekeep.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LorekeepAI/Lorekeep/services/answer"
	"github.com/dgraph-io/badger/v4"
)

// CacheConfig holds configuration for the adapter result cache.
type CacheConfig struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory.
	Path string

	// InMemory enables in-memory mode (no disk persistence). Used in tests.
	InMemory bool

	// TTL bounds how long a cached result stays valid.
	// Default: 6 hours. Metadata and playtime numbers move slowly.
	TTL time.Duration
}

// Cache is a warm-tier store for source adapter results backed by
// BadgerDB. Remote game databases rate-limit aggressively and their data
// changes slowly, so repeated queries for the same title should not leave
// the machine.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenCache opens (or creates) the cache database.
func OpenCache(cfg CacheConfig) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open the source cache at %q: %w", cfg.Path, err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &Cache{db: db, ttl: ttl}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(sourceID, subQuery string) []byte {
	return []byte(sourceID + "\x00" + subQuery)
}

// get returns the cached result for (sourceID, subQuery), or false on miss.
func (c *Cache) get(sourceID, subQuery string) (answer.SourceResult, bool) {
	var result answer.SourceResult
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(sourceID, subQuery))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Warn("Source cache read failed", "source", sourceID, "error", err)
		}
		return answer.SourceResult{}, false
	}
	return result, true
}

// put stores a result with the configured TTL. Write failures are logged
// and swallowed: the cache is an optimization, never a correctness
// dependency.
func (c *Cache) put(sourceID, subQuery string, result answer.SourceResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		slog.Warn("Failed to marshal a source result for caching", "source", sourceID, "error", err)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(sourceID, subQuery), raw).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		slog.Warn("Source cache write failed", "source", sourceID, "error", err)
	}
}

// CachedAdapter wraps an adapter with the result cache. Only Found results
// are cached; misses and errors always retry the live source.
type CachedAdapter struct {
	inner Adapter
	cache *Cache
}

func WithCache(inner Adapter, cache *Cache) *CachedAdapter {
	return &CachedAdapter{inner: inner, cache: cache}
}

func (c *CachedAdapter) ID() string { return c.inner.ID() }

func (c *CachedAdapter) Depth() int { return c.inner.Depth() }

func (c *CachedAdapter) Fetch(ctx context.Context, subQuery string) answer.SourceResult {
	if cached, ok := c.cache.get(c.inner.ID(), subQuery); ok {
		return cached
	}
	result := c.inner.Fetch(ctx, subQuery)
	if result.Status == answer.SourceFound {
		c.cache.put(c.inner.ID(), subQuery, result)
	}
	return result
}
