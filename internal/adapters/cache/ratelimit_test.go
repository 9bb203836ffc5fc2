package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, limit, window), mr
}

// TestRedisLimiter_FixedWindow verifies the boundary and the reset after expiry.
func TestRedisLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, 3, time.Minute)

	for i := 1; i <= 3; i++ {
		if !limiter.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d refused, want allowed", i)
		}
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("request 4 allowed, want refused")
	}
	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Error("other client refused")
	}

	if ttl := mr.TTL(KeyPrefix + "10.0.0.1"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within one window", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Error("request after window refused, want allowed")
	}
}

// TestRedisLimiter_FailsOpen verifies a broken backend never blocks traffic.
func TestRedisLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	mr.SetError("LOADING")

	for i := 0; i < 3; i++ {
		if !limiter.Allow(context.Background(), "10.0.0.1") {
			t.Fatalf("request %d refused while backend failing", i+1)
		}
	}
}

// TestNewClient_BadURL verifies URL validation.
func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "http://nope"); err == nil {
		t.Error("NewClient accepted a non-redis url")
	}

	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_ = client.Close()
}
