package kv

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is the volatile in-process backend. It is only correct for a single
// process and is meant for local runs and tests.
//
// Expired entries are hidden on access and evicted by the cache's single
// cleanup goroutine, so there is no per-key timer. Entries never leave the
// cache for any reason other than TTL or an explicit delete.
type Memory struct {
	cache    *ttlcache.Cache[string, string]
	stopOnce sync.Once
}

// NewMemory starts the cleanup loop; Close stops it.
func NewMemory() *Memory {
	cache := ttlcache.New[string, string](
		// reads must not extend an entry's life
		ttlcache.WithDisableTouchOnHit[string, string](),
	)

	go cache.Start()

	return &Memory{cache: cache}
}

func cacheTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttlcache.NoTTL
	}
	return ttl
}

func live(item *ttlcache.Item[string, string]) bool {
	return item != nil && !item.IsExpired()
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	item := m.cache.Get(key)
	if !live(item) {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.cache.Set(key, value, cacheTTL(ttl))
	return nil
}

func (m *Memory) Take(_ context.Context, key string) (string, bool, error) {
	item, ok := m.cache.GetAndDelete(key)
	if !ok || !live(item) {
		return "", false, nil
	}
	return item.Value(), true, nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) (int, error) {
	n := 0
	for _, k := range keys {
		if item, ok := m.cache.GetAndDelete(k); ok && live(item) {
			n++
		}
	}
	return n, nil
}

// Sweep evicts every expired entry now instead of waiting for the cleanup loop.
func (m *Memory) Sweep() {
	m.cache.DeleteExpired()
}

// Len counts stored entries, including expired ones not yet swept.
func (m *Memory) Len() int {
	return m.cache.Len()
}

func (m *Memory) Ping(context.Context) error {
	return nil
}

// Close stops the cleanup loop. It is safe to call more than once.
func (m *Memory) Close() error {
	m.stopOnce.Do(m.cache.Stop)
	return nil
}
