// Package cache provides the byte-oriented TTL cache used in front of the
// catalog client.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// DefaultSize is the MemoryStore capacity used when none is configured.
const DefaultSize = 1000

// Store is a TTL key-value cache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a bounded in-process Store. The least recently used
// entry is evicted when it is full, and entries older than the store TTL
// are removed in the background. A shorter TTL passed to Set is checked
// on read.
type MemoryStore struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most size entries, each
// for at most ttl. size <= 0 means DefaultSize; ttl <= 0 disables the
// store-wide expiry.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryStore{
		lru: expirable.NewLRU[string, entry](size, nil, ttl),
		now: time.Now,
	}
}

// Get returns the cached value for key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.lru.Remove(key)
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value under key. A ttl <= 0 keeps it for the store TTL.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.lru.Add(key, e)
	return nil
}

// Delete removes key.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

// Len returns the number of entries held.
func (m *MemoryStore) Len() int {
	return m.lru.Len()
}

// Close drops every entry.
func (m *MemoryStore) Close() error {
	m.lru.Purge()
	return nil
}
