// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/models"
)

type stubSource struct {
	fetchCalls  atomic.Int32
	lookupCalls atomic.Int32
	detailCalls atomic.Int32

	restaurants []models.Restaurant
	detail      json.RawMessage
	err         error
}

func (s *stubSource) FetchCandidates(ctx context.Context, key cache.Key) ([]models.Candidate, error) {
	s.fetchCalls.Add(1)
	return nil, s.err
}

func (s *stubSource) Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error) {
	s.lookupCalls.Add(1)
	return s.restaurants, s.err
}

func (s *stubSource) Detail(ctx context.Context, id string) (json.RawMessage, error) {
	s.detailCalls.Add(1)
	return s.detail, s.err
}

func newCachedForTest(t *testing.T, source restaurantSource) *CachedClient {
	t.Helper()
	client, err := NewCachedClient(source, CacheConfig{})
	if err != nil {
		t.Fatalf("NewCachedClient: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestCachedLookupServesSecondCallFromCache(t *testing.T) {
	source := &stubSource{restaurants: []models.Restaurant{{ID: "r1", Name: "Green Leaf"}}}
	client := newCachedForTest(t, source)

	first, err := client.Lookup(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// Flush the write buffer so the second call observes the cached value.
	client.rc.Wait()

	second, err := client.Lookup(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Lookup (cached): %v", err)
	}

	if got := source.lookupCalls.Load(); got != 1 {
		t.Errorf("source lookups = %d, want 1", got)
	}
	if len(second) != len(first) || second[0].ID != "r1" || second[0].Name != "Green Leaf" {
		t.Errorf("cached lookup = %+v, want %+v", second, first)
	}
}

func TestCachedLookupDistinctIDsMiss(t *testing.T) {
	source := &stubSource{restaurants: []models.Restaurant{{ID: "r1"}}}
	client := newCachedForTest(t, source)

	client.Lookup(context.Background(), "a") //nolint:errcheck
	client.rc.Wait()
	client.Lookup(context.Background(), "b") //nolint:errcheck

	if got := source.lookupCalls.Load(); got != 2 {
		t.Errorf("source lookups = %d, want 2 for distinct IDs", got)
	}
}

func TestCachedLookupErrorNotCached(t *testing.T) {
	source := &stubSource{err: errors.New("provider down")}
	client := newCachedForTest(t, source)

	if _, err := client.Lookup(context.Background(), "r1"); err == nil {
		t.Fatal("err = nil, want source error")
	}
	client.rc.Wait()
	if _, err := client.Lookup(context.Background(), "r1"); err == nil {
		t.Fatal("err = nil on retry, want source error")
	}

	if got := source.lookupCalls.Load(); got != 2 {
		t.Errorf("source lookups = %d, want 2: failures must not be cached", got)
	}
}

func TestCachedDetailServesSecondCallFromCache(t *testing.T) {
	doc := json.RawMessage(`{"entity_id":"r1","hours":{"open":"09:00"}}`)
	source := &stubSource{detail: doc}
	client := newCachedForTest(t, source)

	if _, err := client.Detail(context.Background(), "r1"); err != nil {
		t.Fatalf("Detail: %v", err)
	}
	client.rc.Wait()

	got, err := client.Detail(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Detail (cached): %v", err)
	}

	if calls := source.detailCalls.Load(); calls != 1 {
		t.Errorf("source details = %d, want 1", calls)
	}
	if string(got) != string(doc) {
		t.Errorf("cached detail = %s, want %s", got, doc)
	}
}

func TestCachedDetailErrorPassthrough(t *testing.T) {
	source := &stubSource{err: ErrNotFound}
	client := newCachedForTest(t, source)

	if _, err := client.Detail(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCachedFetchCandidatesPassesThrough(t *testing.T) {
	source := &stubSource{}
	client := newCachedForTest(t, source)

	key := cache.NewKey(1, 2, models.Preferences{})
	client.FetchCandidates(context.Background(), key) //nolint:errcheck
	client.FetchCandidates(context.Background(), key) //nolint:errcheck

	if got := source.fetchCalls.Load(); got != 2 {
		t.Errorf("source fetches = %d, want 2: candidate batches are never memoized here", got)
	}
}
