package quota

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClockedGuard(window time.Duration) (*MemoryGuard, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := NewMemoryGuard(window)
	g.now = clk.Now
	return g, clk
}

func TestMemoryGuard_AllowsUpToLimitThenDenies(t *testing.T) {
	g, _ := newClockedGuard(time.Hour)
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
	if d.Allowed || d.Used != 3 || d.RetryAfter != time.Hour {
		t.Fatalf("expected denial with full retry-after, got %+v", d)
	}
	if d.Remaining() != 0 {
		t.Fatalf("Remaining = %d", d.Remaining())
	}
}

func TestMemoryGuard_WindowResetsAfterExpiry(t *testing.T) {
	g, clk := newClockedGuard(24 * time.Hour)
	ctx := context.Background()

	_, _ = g.Authorize(ctx, "u1", 1)
	clk.Advance(23 * time.Hour)
	d, _ := g.Authorize(ctx, "u1", 1)
	if d.Allowed || d.RetryAfter != time.Hour {
		t.Fatalf("expected denial with 1h left, got %+v", d)
	}

	clk.Advance(time.Hour)
	d, _ = g.Authorize(ctx, "u1", 1)
	if !d.Allowed || d.Used != 1 {
		t.Fatalf("expected fresh window, got %+v", d)
	}
	if want := clk.Now().Add(24 * time.Hour); !d.ResetAt.Equal(want) {
		t.Fatalf("window should be anchored at first use: reset %v want %v", d.ResetAt, want)
	}
}

func TestMemoryGuard_IdentitiesAreIndependent(t *testing.T) {
	g, _ := newClockedGuard(time.Hour)
	ctx := context.Background()

	_, _ = g.Authorize(ctx, "u1", 1)
	if d, _ := g.Authorize(ctx, "u2", 1); !d.Allowed {
		t.Fatalf("u2 must not be affected by u1: %+v", d)
	}
}

func TestMemoryGuard_NonPositiveLimitDenies(t *testing.T) {
	g, _ := newClockedGuard(time.Hour)
	if d, _ := g.Authorize(context.Background(), "u1", 0); d.Allowed {
		t.Fatalf("limit 0 must deny: %+v", d)
	}
}

func TestMemoryGuard_PeekDoesNotConsume(t *testing.T) {
	g, clk := newClockedGuard(time.Hour)
	ctx := context.Background()

	d, _ := g.Peek(ctx, "u1", 5)
	if !d.Allowed || d.Used != 0 || !d.ResetAt.IsZero() || d.Remaining() != 5 {
		t.Fatalf("unknown identity peek = %+v", d)
	}

	_, _ = g.Authorize(ctx, "u1", 5)
	_, _ = g.Authorize(ctx, "u1", 5)
	for i := 0; i < 3; i++ {
		d, _ = g.Peek(ctx, "u1", 5)
	}
	if d.Used != 2 || d.Remaining() != 3 {
		t.Fatalf("peek after two calls = %+v", d)
	}

	clk.Advance(time.Hour)
	if d, _ = g.Peek(ctx, "u1", 5); d.Used != 0 {
		t.Fatalf("peek after expiry = %+v", d)
	}
}

func TestMemoryGuard_ConcurrentAtLimitMinusOneAdmitsExactlyOne(t *testing.T) {
	for round := 0; round < 50; round++ {
		g := NewMemoryGuard(time.Hour)
		ctx := context.Background()
		const limit = 1000
		for i := 0; i < limit-1; i++ {
			if d, _ := g.Authorize(ctx, "u1", limit); !d.Allowed {
				t.Fatalf("seed call %d denied", i)
			}
		}

		var allowed int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if d, _ := g.Authorize(ctx, "u1", limit); d.Allowed {
					atomic.AddInt32(&allowed, 1)
				}
			}()
		}
		close(start)
		wg.Wait()
		if allowed != 1 {
			t.Fatalf("round %d: expected exactly one admission, got %d", round, allowed)
		}
	}
}

func TestMemoryGuard_ManyGoroutinesNeverExceedLimit(t *testing.T) {
	g := NewMemoryGuard(time.Hour)
	ctx := context.Background()
	const limit = 100

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 400; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := g.Authorize(ctx, "shared", limit); d.Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()
	if allowed != limit {
		t.Fatalf("admitted %d, want %d", allowed, limit)
	}
}

func TestMemoryGuard_SweepRemovesExpired(t *testing.T) {
	g, clk := newClockedGuard(time.Hour)
	ctx := context.Background()

	_, _ = g.Authorize(ctx, "old", 5)
	clk.Advance(30 * time.Minute)
	_, _ = g.Authorize(ctx, "fresh", 5)
	clk.Advance(31 * time.Minute)

	if n := g.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, ok := g.entries.Load("old"); ok {
		t.Fatalf("expired entry still present")
	}
	if d, _ := g.Peek(ctx, "fresh", 5); d.Used != 1 {
		t.Fatalf("live entry lost: %+v", d)
	}
	if d, _ := g.Authorize(ctx, "old", 5); !d.Allowed || d.Used != 1 {
		t.Fatalf("swept identity should start fresh: %+v", d)
	}
}
