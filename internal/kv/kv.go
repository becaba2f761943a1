// Package kv is the storage abstraction shared by the session store and the
// response mailbox. Every operation is atomic per key and every write carries
// its own expiry, so callers never depend on which backend is active.
package kv

import (
	"context"
	"time"
)

// Backend is a string key-value store with per-key expiry.
//
// Absence is not an error: Get and Take report it through the bool result.
// A ttl <= 0 stores the value without expiry. Writing a key replaces its
// expiry, which is how callers re-arm a TTL.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Take reads and removes key in one step.
	Take(ctx context.Context, key string) (string, bool, error)
	// Delete removes keys and reports how many existed.
	Delete(ctx context.Context, keys ...string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}
