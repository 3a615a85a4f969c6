package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, found, err := c.Get(ctx, "k")
	if err != nil || !found || string(val) != "v" {
		t.Errorf("Get = %q, %v, %v", val, found, err)
	}

	if _, found, _ := c.Get(ctx, "missing"); found {
		t.Error("found a key that was never set")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("expired entry still served")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("deleted entry still served")
	}
}

func TestMemoryCacheGetMultiple(t *testing.T) {
	c := NewMemoryCache(100, time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.SetMultiple(ctx, map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}, time.Minute)
	c.Set(ctx, "stale", []byte("3"), -time.Second)

	got, err := c.GetMultiple(ctx, []string{"a", "b", "stale", "missing"})
	if err != nil {
		t.Fatalf("GetMultiple: %v", err)
	}
	if len(got) != 2 || string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("GetMultiple = %v", got)
	}
}

func TestMemoryCacheSweepEvictsOverLimit(t *testing.T) {
	c := NewMemoryCache(2, time.Hour)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "soon", []byte("1"), time.Minute)
	c.Set(ctx, "mid", []byte("2"), time.Hour)
	c.Set(ctx, "late", []byte("3"), 2*time.Hour)

	c.sweep()

	if _, found, _ := c.Get(ctx, "soon"); found {
		t.Error("entry closest to expiry survived eviction")
	}
	for _, k := range []string{"mid", "late"} {
		if _, found, _ := c.Get(ctx, k); !found {
			t.Errorf("entry %q evicted while under the limit", k)
		}
	}
}
