package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func TestRedisGuard_AllowsUpToLimitThenDenies(t *testing.T) {
	_, rdb := setupMiniredis(t)
	g := NewRedisGuard(rdb, time.Hour)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d, err := g.Authorize(ctx, "u1", 3)
		if err != nil || !d.Allowed || d.Used != i {
			t.Fatalf("call %d: %+v, %v", i, d, err)
		}
	}
	d, err := g.Authorize(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if d.Allowed || d.Used != 3 {
		t.Fatalf("expected denial, got %+v", d)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Hour {
		t.Fatalf("RetryAfter out of range: %v", d.RetryAfter)
	}
}

func TestRedisGuard_WindowExpires(t *testing.T) {
	s, rdb := setupMiniredis(t)
	g := NewRedisGuard(rdb, 24*time.Hour)
	ctx := context.Background()

	if d, _ := g.Authorize(ctx, "u1", 1); !d.Allowed {
		t.Fatalf("first call denied")
	}
	if d, _ := g.Authorize(ctx, "u1", 1); d.Allowed {
		t.Fatalf("second call allowed")
	}
	if ttl := s.TTL(redisKeyPrefix + "u1"); ttl != 24*time.Hour {
		t.Fatalf("window not anchored at first use, ttl=%v", ttl)
	}

	s.FastForward(24 * time.Hour)
	if d, _ := g.Authorize(ctx, "u1", 1); !d.Allowed || d.Used != 1 {
		t.Fatalf("expected fresh window, got %+v", d)
	}
}

func TestRedisGuard_PeekDoesNotConsume(t *testing.T) {
	_, rdb := setupMiniredis(t)
	g := NewRedisGuard(rdb, time.Hour)
	ctx := context.Background()

	d, err := g.Peek(ctx, "u1", 5)
	if err != nil || d.Used != 0 || !d.Allowed || !d.ResetAt.IsZero() {
		t.Fatalf("peek unknown = %+v, %v", d, err)
	}

	_, _ = g.Authorize(ctx, "u1", 5)
	for i := 0; i < 3; i++ {
		d, err = g.Peek(ctx, "u1", 5)
	}
	if err != nil || d.Used != 1 || d.Remaining() != 4 || d.ResetAt.IsZero() {
		t.Fatalf("peek after one call = %+v, %v", d, err)
	}
}

func TestRedisGuard_ConcurrentAtLimitMinusOneAdmitsExactlyOne(t *testing.T) {
	_, rdb := setupMiniredis(t)
	g := NewRedisGuard(rdb, time.Hour)
	ctx := context.Background()
	const limit = 10

	for i := 0; i < limit-1; i++ {
		if d, err := g.Authorize(ctx, "u1", limit); err != nil || !d.Allowed {
			t.Fatalf("seed %d: %+v, %v", i, d, err)
		}
	}

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, err := g.Authorize(ctx, "u1", limit); err == nil && d.Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()
	if allowed != 1 {
		t.Fatalf("expected exactly one admission, got %d", allowed)
	}
}

func TestRedisGuard_BackendDownReturnsError(t *testing.T) {
	s, rdb := setupMiniredis(t)
	g := NewRedisGuard(rdb, time.Hour)
	s.Close()

	if _, err := g.Authorize(context.Background(), "u1", 5); err == nil {
		t.Fatalf("expected error with redis down")
	}
	if _, err := g.Peek(context.Background(), "u1", 5); err == nil {
		t.Fatalf("expected peek error with redis down")
	}
}
