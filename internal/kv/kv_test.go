package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type backendCase struct {
	name    string
	backend Backend
	// advance moves the backend's clock: real time for memory, miniredis
	// FastForward for redis.
	advance func(time.Duration)
}

func backends(t *testing.T) []backendCase {
	t.Helper()

	mem := NewMemory()
	t.Cleanup(func() { _ = mem.Close() })

	mr := miniredis.RunT(t)
	rdb := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rdb.Close() })

	return []backendCase{
		{name: "memory", backend: mem, advance: time.Sleep},
		{name: "redis", backend: rdb, advance: mr.FastForward},
	}
}

func TestBackendGetSet(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			if _, ok, err := bc.backend.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
			}

			if err := bc.backend.Set(ctx, "k", "v1", time.Minute); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			if err := bc.backend.Set(ctx, "k", "v2", time.Minute); err != nil {
				t.Fatalf("Set() error: %v", err)
			}

			got, ok, err := bc.backend.Get(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Get(k) = ok %v, err %v", ok, err)
			}
			if got != "v2" {
				t.Errorf("Get(k) = %q, want %q", got, "v2")
			}
		})
	}
}

func TestBackendTakeConsumesOnce(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			if err := bc.backend.Set(ctx, "response:s1", "hello", time.Minute); err != nil {
				t.Fatalf("Set() error: %v", err)
			}

			got, ok, err := bc.backend.Take(ctx, "response:s1")
			if err != nil || !ok || got != "hello" {
				t.Fatalf("first Take = (%q, %v, %v), want (hello, true, nil)", got, ok, err)
			}

			_, ok, err = bc.backend.Take(ctx, "response:s1")
			if err != nil || ok {
				t.Fatalf("second Take = ok %v, err %v; want absent", ok, err)
			}
		})
	}
}

func TestBackendExpiry(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			if err := bc.backend.Set(ctx, "k", "v", 200*time.Millisecond); err != nil {
				t.Fatalf("Set() error: %v", err)
			}

			bc.advance(120 * time.Millisecond)
			if err := bc.backend.Set(ctx, "k", "v", 200*time.Millisecond); err != nil {
				t.Fatalf("Set() error: %v", err)
			}

			bc.advance(120 * time.Millisecond)
			if _, ok, _ := bc.backend.Get(ctx, "k"); !ok {
				t.Fatal("key expired before the re-armed deadline")
			}

			bc.advance(150 * time.Millisecond)
			if _, ok, _ := bc.backend.Get(ctx, "k"); ok {
				t.Fatal("key still present after deadline")
			}
			if _, ok, _ := bc.backend.Take(ctx, "k"); ok {
				t.Error("Take() returned an expired key")
			}
		})
	}
}

func TestBackendNonPositiveTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			_ = bc.backend.Set(ctx, "zero", "z", 0)
			_ = bc.backend.Set(ctx, "keep", "k", -1)
			_ = bc.backend.Set(ctx, "negative", "n", -time.Second)

			bc.advance(100 * time.Millisecond)

			for _, key := range []string{"zero", "keep", "negative"} {
				if _, ok, err := bc.backend.Get(ctx, key); err != nil || !ok {
					t.Errorf("Get(%s) = ok %v, err %v; want present", key, ok, err)
				}
			}
		})
	}
}

func TestBackendDelete(t *testing.T) {
	ctx := context.Background()
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			_ = bc.backend.Set(ctx, "a", "1", time.Minute)
			_ = bc.backend.Set(ctx, "b", "2", time.Minute)

			n, err := bc.backend.Delete(ctx, "a", "b", "c")
			if err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if n != 2 {
				t.Errorf("Delete() = %d, want 2", n)
			}

			n, err = bc.backend.Delete(ctx, "a")
			if err != nil || n != 0 {
				t.Errorf("Delete() again = %d, %v; want 0, nil", n, err)
			}
		})
	}
}

func TestBackendPing(t *testing.T) {
	for _, bc := range backends(t) {
		t.Run(bc.name, func(t *testing.T) {
			if err := bc.backend.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error: %v", err)
			}
		})
	}
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	defer mem.Close()

	_ = mem.Set(ctx, "short", "x", 20*time.Millisecond)
	_ = mem.Set(ctx, "long", "y", time.Hour)
	_ = mem.Set(ctx, "forever", "z", 0)

	time.Sleep(60 * time.Millisecond)
	mem.Sweep()

	if n := mem.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

func TestMemoryCloseIdempotent(t *testing.T) {
	mem := NewMemory()
	if err := mem.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := mem.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}
