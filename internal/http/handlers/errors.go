// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). Clients branch on these
// codes; messages are for humans.
//
// Conventions:
//   - Codes are lowercase, snake_case.
//   - Generic codes mirror HTTP status semantics.
//   - Domain-specific codes (e.g., quota_exceeded, prompt_failed) name the
//     operation or business rule that failed.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "quota_exceeded",
//	  "message": "request quota exceeded"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeQuotaExceeded = "quota_exceeded"
	ErrCodePromptFailed  = "prompt_failed"
	ErrCodeHistoryFailed = "history_failed"
	ErrCodeStatsFailed   = "stats_failed"
)
