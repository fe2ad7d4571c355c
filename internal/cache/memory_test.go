package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	if err := c.Set(ctx, "plan", `{"status":"success"}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, ok := c.Get(ctx, "plan")
	if !ok || val != `{"status":"success"}` {
		t.Errorf("Expected cached value, got %q (%v)", val, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get(ctx, "plan"); ok {
		t.Error("Expected entry to expire")
	}
	if c.Len() != 0 {
		t.Errorf("Expected expired entry to be evicted, got %d entries", c.Len())
	}
}

func TestMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	_ = c.Set(ctx, "k", "v")

	c.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }
	if v, ok := c.Get(ctx, "k"); !ok || v != "v" {
		t.Errorf("Expected entry without ttl to persist, got %q (%v)", v, ok)
	}
}

func TestMemoryCache_SweepsExpiredOnSet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		_ = c.Set(ctx, fmt.Sprintf("plan:%d", i), "report")
	}
	if c.Len() != 1000 {
		t.Fatalf("Expected 1000 entries, got %d", c.Len())
	}

	now = now.Add(24 * time.Hour)
	_ = c.Set(ctx, "fresh", "report")
	if c.Len() != 1 {
		t.Errorf("Expected expired entries to be swept, got %d entries", c.Len())
	}
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Hour)
	c.now = func() time.Time { return now }
	c.maxEntries = 3

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, k)
		now = now.Add(time.Second)
	}
	_ = c.Set(ctx, "d", "d")

	if c.Len() != 3 {
		t.Errorf("Expected cache to stay at 3 entries, got %d", c.Len())
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("Expected the entry closest to expiry to be evicted")
	}
	if v, ok := c.Get(ctx, "d"); !ok || v != "d" {
		t.Errorf("Expected new entry to be stored, got %q (%v)", v, ok)
	}

	// Overwriting an existing key never evicts.
	_ = c.Set(ctx, "b", "b2")
	if _, ok := c.Get(ctx, "c"); !ok || c.Len() != 3 {
		t.Errorf("Expected overwrite to keep all entries, got %d", c.Len())
	}
}

func TestMemoryCache_GetKeepsEntryRewrittenAfterExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(time.Minute)
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "plan", "stale")

	// The next clock read inside Get lands between its read and write locks;
	// store a fresh value for the same key right there.
	now = now.Add(2 * time.Minute)
	rewrote := false
	c.now = func() time.Time {
		if !rewrote {
			rewrote = true
			_ = c.Set(ctx, "plan", "fresh")
		}
		return now
	}

	if _, ok := c.Get(ctx, "plan"); ok {
		t.Error("Expected the stale read to miss")
	}
	if v, ok := c.Get(ctx, "plan"); !ok || v != "fresh" {
		t.Errorf("Expected fresh entry to survive, got %q (%v)", v, ok)
	}
}
