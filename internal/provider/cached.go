// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package provider

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/goccy/go-json"

	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/metrics"
	"github.com/studybites/studybites/internal/models"
)

// restaurantSource is what CachedClient wraps: usually the circuit-breaker
// client, or the raw client in tests.
type restaurantSource interface {
	FetchCandidates(ctx context.Context, key cache.Key) ([]models.Candidate, error)
	Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error)
	Detail(ctx context.Context, id string) (json.RawMessage, error)
}

// CacheConfig tunes the detail response cache.
type CacheConfig struct {
	// MaxEntries bounds how many lookup and detail responses stay cached.
	MaxEntries int64

	// TTL is how long a cached response stays fresh.
	TTL time.Duration
}

// CachedClient memoizes Lookup and Detail responses in an in-process
// ristretto cache. Restaurant documents change rarely relative to how often
// clients re-open the same venue, so a short TTL removes most repeat provider
// calls. FetchCandidates is passed through untouched; candidate batches are
// owned by the validation cache.
type CachedClient struct {
	inner restaurantSource
	rc    *ristretto.Cache[string, []byte]
	ttl   time.Duration
}

// NewCachedClient wraps source with an in-process response cache.
func NewCachedClient(source restaurantSource, cfg CacheConfig) (*CachedClient, error) {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	rc, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &CachedClient{
		inner: source,
		rc:    rc,
		ttl:   ttl,
	}, nil
}

// Close releases the response cache.
func (c *CachedClient) Close() {
	c.rc.Close()
}

// FetchCandidates passes through to the wrapped source.
func (c *CachedClient) FetchCandidates(ctx context.Context, key cache.Key) ([]models.Candidate, error) {
	return c.inner.FetchCandidates(ctx, key)
}

// Lookup resolves an entity ID, serving repeated lookups from cache.
func (c *CachedClient) Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error) {
	cacheKey := "lookup:" + entityID
	if buf, ok := c.rc.Get(cacheKey); ok {
		var restaurants []models.Restaurant
		if err := json.Unmarshal(buf, &restaurants); err == nil {
			metrics.DetailCacheHits.Inc()
			return restaurants, nil
		}
		// Unreadable cached payload; drop it and re-fetch.
		c.rc.Del(cacheKey)
	}
	metrics.DetailCacheMisses.Inc()

	restaurants, err := c.inner.Lookup(ctx, entityID)
	if err != nil {
		return nil, err
	}

	if buf, err := json.Marshal(restaurants); err == nil {
		c.rc.SetWithTTL(cacheKey, buf, 1, c.ttl)
	} else {
		logging.Warn().Err(err).Str("entity_id", entityID).Msg("Failed to cache lookup response")
	}
	return restaurants, nil
}

// Detail fetches a restaurant document, serving repeated fetches from cache.
func (c *CachedClient) Detail(ctx context.Context, id string) (json.RawMessage, error) {
	cacheKey := "detail:" + id
	if buf, ok := c.rc.Get(cacheKey); ok {
		metrics.DetailCacheHits.Inc()
		return json.RawMessage(bytes.Clone(buf)), nil
	}
	metrics.DetailCacheMisses.Inc()

	doc, err := c.inner.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	c.rc.SetWithTTL(cacheKey, bytes.Clone(doc), 1, c.ttl)
	return doc, nil
}
