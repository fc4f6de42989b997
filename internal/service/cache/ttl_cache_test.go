package cache

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", 42, time.Minute)

	v, ok := c.Get("k")
	if !ok {
		t.Fatalf("expected hit")
	}
	if v.(int) != 42 {
		t.Fatalf("got %v", v)
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", "v", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expiry")
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", "v", 0)

	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("zero ttl entry expired")
	}
}

func TestTTLCacheDelete(t *testing.T) {
	c := NewTTLCache()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss after delete")
	}
}
