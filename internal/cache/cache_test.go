package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[int](time.Minute, 10)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned a value")
	}

	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after update = %d, want 2", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	current := base

	c := New[string](5*time.Minute, 10)
	c.now = func() time.Time { return current }

	c.Set("k", "v")

	current = base.Add(4 * time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	current = base.Add(6 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after expired read, want 0", c.Len())
	}
}

func TestSetRefreshesTTL(t *testing.T) {
	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	current := base

	c := New[string](5*time.Minute, 10)
	c.now = func() time.Time { return current }

	c.Set("k", "v1")
	current = base.Add(4 * time.Minute)
	c.Set("k", "v2")

	current = base.Add(8 * time.Minute)
	v, ok := c.Get("k")
	if !ok || v != "v2" {
		t.Errorf("Get(k) = %q, %v; want v2 with refreshed TTL", v, ok)
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[int](time.Minute, 3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("d", 4)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q was evicted unexpectedly", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestInvalidate(t *testing.T) {
	c := New[int](time.Minute, 10)

	c.Set("a", 1)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry still present")
	}

	// Invalidating a missing key is a no-op.
	c.Invalidate("nope")
}
