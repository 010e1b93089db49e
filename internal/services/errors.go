// Package services defines the business logic for prompt submission, user
// history, and usage statistics. This file centralizes common service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	// ErrEmptyPrompt is returned when a submission carries an empty or
	// whitespace-only prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a prompt exceeds the configured rune limit.
	ErrTooLong = errors.New("prompt too long")

	// ErrEmailRequired is returned by history lookups without an email.
	ErrEmailRequired = errors.New("email is required")

	// ErrIdentityRequired is returned when a caller identity is missing.
	ErrIdentityRequired = errors.New("user identity is required")
)

// Not-found errors.
var (
	// ErrToolNotFound indicates that the tool id is not in the catalog.
	ErrToolNotFound = errors.New("tool not found")

	// ErrUserNotFound indicates that no user matches the lookup, or that the
	// user is not visible to the caller.
	ErrUserNotFound = errors.New("user not found")
)

// ErrQuotaExceeded is returned when the caller's window is exhausted. The
// concrete error is a *QuotaError carrying the retry delay.
var ErrQuotaExceeded = errors.New("quota exceeded")

// QuotaError reports a quota denial.
type QuotaError struct {
	Limit      int
	RetryAfter time.Duration
	ResetAt    time.Time
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: limit %d, retry after %s", e.Limit, e.RetryAfter.Round(time.Second))
}

// Unwrap lets errors.Is(err, ErrQuotaExceeded) match.
func (e *QuotaError) Unwrap() error { return ErrQuotaExceeded }

// ToolNotFoundError reports an unknown tool id with the closest known id,
// when one is close enough to be a likely typo.
type ToolNotFoundError struct {
	ToolID     string
	Suggestion string
}

func (e *ToolNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("tool %q not found, did you mean %q?", e.ToolID, e.Suggestion)
	}
	return fmt.Sprintf("tool %q not found", e.ToolID)
}

// Unwrap lets errors.Is(err, ErrToolNotFound) match.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }
