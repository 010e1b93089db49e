// Package quota enforces the per-identity request allowance in front of the
// completion provider.
//
// Policy: each identity may perform up to limit requests per rolling window.
// The window is anchored at the first request made after the previous window
// elapsed, so an identity that goes quiet starts a fresh window on its next
// call. The check and the increment happen as one atomic step, so two
// concurrent requests at limit-1 admit exactly one of them.
package quota

import (
	"context"
	"time"
)

// DefaultWindow is the rolling window length used when none is configured.
const DefaultWindow = 24 * time.Hour

// Decision is the outcome of a quota check.
//
// Used and Limit describe the window after the check. RetryAfter is set
// when Allowed is false and says how long until the window resets. ResetAt
// is the zero time when the identity has no active window.
type Decision struct {
	Allowed    bool
	Used       int
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Remaining returns how many more requests the window admits.
func (d Decision) Remaining() int {
	if r := d.Limit - d.Used; r > 0 {
		return r
	}
	return 0
}

// Guard authorizes requests against an identity's allowance.
type Guard interface {
	// Authorize consumes one unit for identity when the window has room.
	Authorize(ctx context.Context, identity string, limit int) (Decision, error)
	// Peek reports the current window without consuming anything.
	Peek(ctx context.Context, identity string, limit int) (Decision, error)
}

func denyAll(limit int, window time.Duration) Decision {
	return Decision{Allowed: false, Limit: limit, RetryAfter: window}
}
