// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package cache

import (
	"sync"
	"time"

	"github.com/studybites/studybites/internal/metrics"
)

// indexNode is one entry in the LRU index.
type indexNode struct {
	key       string
	entry     *Entry
	prev      *indexNode
	next      *indexNode
	expiresAt time.Time
}

// entryIndex is a thread-safe LRU index of cache keys to entries, with TTL.
// It bounds the validation cache: the process-lifetime unbounded map the
// design started from is replaced by capacity-based eviction plus lazy
// expiration. Get, Add, and eviction are O(1) via a doubly-linked list plus
// a map, head.next being the most recently used.
//
// Evicting an entry does not stop its validation task; the task holds its own
// reference and finishes harmlessly on an entry nobody can reach anymore.
type entryIndex struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration

	items map[string]*indexNode

	// head and tail are sentinel nodes for the doubly-linked list.
	head *indexNode
	tail *indexNode
}

func newEntryIndex(capacity int, ttl time.Duration) *entryIndex {
	idx := &entryIndex{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*indexNode, capacity),
		head:     &indexNode{},
		tail:     &indexNode{},
	}
	idx.head.next = idx.tail
	idx.tail.prev = idx.head
	return idx
}

// Get retrieves an entry, refreshing its recency. Expired entries are removed
// and reported as absent so the caller re-fetches.
func (idx *entryIndex) Get(key string) (*Entry, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	node, exists := idx.items[key]
	if !exists {
		return nil, false
	}
	if time.Now().After(node.expiresAt) {
		idx.removeNode(node)
		metrics.ValidationCacheEvictions.Inc()
		metrics.ValidationCacheEntries.Set(float64(len(idx.items)))
		return nil, false
	}

	idx.moveToFront(node)
	return node.entry, true
}

// Add stores an entry under key, evicting the least recently used entry when
// over capacity.
func (idx *entryIndex) Add(key string, entry *Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	expiresAt := time.Now().Add(idx.ttl)

	if node, exists := idx.items[key]; exists {
		node.entry = entry
		node.expiresAt = expiresAt
		idx.moveToFront(node)
		return
	}

	node := &indexNode{
		key:       key,
		entry:     entry,
		expiresAt: expiresAt,
	}
	idx.addToFront(node)
	idx.items[key] = node

	for len(idx.items) > idx.capacity {
		oldest := idx.tail.prev
		if oldest == idx.head {
			break
		}
		idx.removeNode(oldest)
		metrics.ValidationCacheEvictions.Inc()
	}

	metrics.ValidationCacheEntries.Set(float64(len(idx.items)))
}

// Len returns the current number of indexed entries.
func (idx *entryIndex) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.items)
}

// Internal methods (must be called with mu held)

func (idx *entryIndex) addToFront(node *indexNode) {
	node.prev = idx.head
	node.next = idx.head.next
	idx.head.next.prev = node
	idx.head.next = node
}

func (idx *entryIndex) moveToFront(node *indexNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
	idx.addToFront(node)
}

func (idx *entryIndex) removeNode(node *indexNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
	delete(idx.items, node.key)
}
