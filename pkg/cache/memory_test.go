package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()
	type payload struct {
		Symbol string  `json:"symbol"`
		Ratio  float64 `json:"ratio"`
	}

	if err := c.Set(ctx, "k", payload{Symbol: "AAPL", Ratio: 3.5}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := c.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "AAPL" || got.Ratio != 3.5 {
		t.Fatalf("got %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	var got string
	if err := c.Get(context.Background(), "missing", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err %v want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	var got string
	if err := c.Get(ctx, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("err %v want ErrCacheMiss after expiry", err)
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	ctx := context.Background()
	ok, err := c.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: %v %v", ok, err)
	}
	ok, err = c.TryLock(ctx, "lock", time.Minute)
	if err != nil || ok {
		t.Fatalf("second lock should fail: %v %v", ok, err)
	}
	if err := c.Unlock(ctx, "lock"); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	ok, err = c.TryLock(ctx, "lock", time.Minute)
	if err != nil || !ok {
		t.Fatalf("relock after unlock: %v %v", ok, err)
	}
}
