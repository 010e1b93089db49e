package quota

import (
	"context"
	"sync"
	"time"
)

type window struct {
	mu    sync.Mutex
	used  int
	start time.Time
	dead  bool // set by Sweep once the entry has left the map
}

// MemoryGuard keeps quota state in process memory. Each identity owns its
// own lock, so callers for different identities never contend.
type MemoryGuard struct {
	window  time.Duration
	now     func() time.Time
	entries sync.Map // identity -> *window
}

// NewMemoryGuard returns a guard with the given window length
// (DefaultWindow when d <= 0).
func NewMemoryGuard(d time.Duration) *MemoryGuard {
	if d <= 0 {
		d = DefaultWindow
	}
	return &MemoryGuard{window: d, now: time.Now}
}

// lock returns the live entry for identity with its mutex held.
func (g *MemoryGuard) lock(identity string) *window {
	for {
		v, ok := g.entries.Load(identity)
		if !ok {
			v, _ = g.entries.LoadOrStore(identity, &window{})
		}
		w := v.(*window)
		w.mu.Lock()
		if !w.dead {
			return w
		}
		w.mu.Unlock()
	}
}

// Authorize implements Guard.
func (g *MemoryGuard) Authorize(_ context.Context, identity string, limit int) (Decision, error) {
	if limit <= 0 {
		return denyAll(limit, g.window), nil
	}
	now := g.now()
	w := g.lock(identity)
	defer w.mu.Unlock()

	if w.start.IsZero() || !now.Before(w.start.Add(g.window)) {
		w.used = 0
		w.start = now
	}
	resetAt := w.start.Add(g.window)
	if w.used >= limit {
		return Decision{
			Allowed:    false,
			Used:       w.used,
			Limit:      limit,
			RetryAfter: resetAt.Sub(now),
			ResetAt:    resetAt,
		}, nil
	}
	w.used++
	return Decision{Allowed: true, Used: w.used, Limit: limit, ResetAt: resetAt}, nil
}

// Peek implements Guard.
func (g *MemoryGuard) Peek(_ context.Context, identity string, limit int) (Decision, error) {
	now := g.now()
	v, ok := g.entries.Load(identity)
	if !ok {
		return Decision{Allowed: limit > 0, Limit: limit}, nil
	}
	w := v.(*window)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dead || w.start.IsZero() || !now.Before(w.start.Add(g.window)) {
		return Decision{Allowed: limit > 0, Limit: limit}, nil
	}
	d := Decision{Used: w.used, Limit: limit, ResetAt: w.start.Add(g.window)}
	d.Allowed = w.used < limit
	if !d.Allowed {
		d.RetryAfter = d.ResetAt.Sub(now)
	}
	return d, nil
}

// Sweep drops identities whose window has elapsed and returns how many were
// removed.
func (g *MemoryGuard) Sweep() int {
	now := g.now()
	n := 0
	g.entries.Range(func(k, v any) bool {
		w := v.(*window)
		w.mu.Lock()
		if !w.dead && !now.Before(w.start.Add(g.window)) {
			w.dead = true
			g.entries.CompareAndDelete(k, v)
			n++
		}
		w.mu.Unlock()
		return true
	})
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (g *MemoryGuard) RunSweeper(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			g.Sweep()
		}
	}
}
