package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_JSON(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Total int `json:"total"`
	}

	if err := c.SetJSON(ctx, "stats", payload{Total: 7}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	var got payload
	if err := c.GetJSON(ctx, "stats", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Total != 7 {
		t.Errorf("total = %d, want 7", got.Total)
	}

	mr.FastForward(2 * time.Minute)
	if err := c.GetJSON(ctx, "stats", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestRedisCache_Counters(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := c.Increment(ctx, "hits")
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != i {
			t.Errorf("incr = %d, want %d", n, i)
		}
	}

	if err := c.Expire(ctx, "hits", time.Minute); err != nil {
		t.Fatalf("expire: %v", err)
	}
	ttl, err := c.TTL(ctx, "hits")
	if err != nil || ttl <= 0 {
		t.Errorf("ttl = %v, err = %v", ttl, err)
	}

	if err := c.Delete(ctx, "hits"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	exists, err := c.Exists(ctx, "hits")
	if err != nil || exists {
		t.Errorf("key should be gone, exists=%v err=%v", exists, err)
	}
}

func TestRedisCache_Ping(t *testing.T) {
	c, mr := newTestCache(t)

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	mr.Close()
	if err := c.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail once the server is gone")
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	if _, err := NewRedisCache("not-a-url"); err == nil {
		t.Error("expected an error for an invalid URL")
	}
}
