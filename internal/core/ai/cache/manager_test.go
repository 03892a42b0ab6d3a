package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"cooking-buddy/internal/core/ai/provider"
	"cooking-buddy/internal/infrastructure/config"
	"cooking-buddy/internal/pkg/common"
)

func newTestManager(t *testing.T, maxSize int) *CacheManager {
	t.Helper()
	common.InitTestLogger()
	m := NewManager(&config.CacheConfig{
		Enabled:         true,
		MaxSize:         maxSize,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func request(text string) *provider.Request {
	return &provider.Request{
		Model:       "llama3-8b-8192",
		Temperature: 0.3,
		Messages: []provider.Message{
			provider.System("normalize"),
			provider.User(text),
		},
	}
}

func TestNewManagerDisabled(t *testing.T) {
	common.InitTestLogger()
	if m := NewManager(&config.CacheConfig{Enabled: false}); m != nil {
		t.Fatal("expected nil manager when cache is disabled")
	}
}

func TestGetSet(t *testing.T) {
	m := newTestManager(t, 10)
	ctx := context.Background()

	if _, err := m.Get(ctx, request("eggs")); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := m.Set(ctx, request("eggs"), "eggs"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.Get(ctx, request("  eggs  "))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "eggs" {
		t.Fatalf("got %q", got)
	}

	stats := m.GetStats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestKeyDependsOnTemperature(t *testing.T) {
	a := request("eggs")
	b := request("eggs")
	b.Temperature = 0.9
	if GenerateKey(a) == GenerateKey(b) {
		t.Fatal("keys must differ by temperature")
	}
}

func TestExpiry(t *testing.T) {
	m := newTestManager(t, 10)
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, request("milk"), "milk")
	m.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, err := m.Get(ctx, request("milk")); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expired entry to miss, got %v", err)
	}
}

func TestLRUEviction(t *testing.T) {
	m := newTestManager(t, 2)
	ctx := context.Background()
	now := time.Now()
	tick := 0
	m.now = func() time.Time {
		tick++
		return now.Add(time.Duration(tick) * time.Millisecond)
	}

	_ = m.Set(ctx, request("a"), "a")
	_ = m.Set(ctx, request("b"), "b")
	// a 被存取過，b 應被淘汰
	if _, err := m.Get(ctx, request("a")); err != nil {
		t.Fatalf("get a: %v", err)
	}
	if err := m.Set(ctx, request("c"), "c"); err != nil {
		t.Fatalf("set c: %v", err)
	}

	if _, err := m.Get(ctx, request("b")); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if _, err := m.Get(ctx, request("a")); err != nil {
		t.Fatalf("expected a kept, got %v", err)
	}
}
