// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the caller identity gate. Every API route requires the
// X-User-ID and X-User-Email headers set by the fronting auth proxy; the
// optional X-User-Name is carried along for display purposes. The middleware
// stores the values in the Gin context so handlers, the idempotency lookup,
// and the access log can read them.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Identity headers.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// Gin context keys for the resolved identity.
const (
	ctxKeyUserID    = "userID"
	ctxKeyUserEmail = "userEmail"
	ctxKeyUserName  = "userName"
)

// Column widths of the users table.
const (
	maxUserIDLen    = 64
	maxUserEmailLen = 320
	maxUserNameLen  = 255
)

// EnsureUserFunc registers (or refreshes) the caller's user row. It is called
// once per authenticated request; implementations are expected to cache.
type EnsureUserFunc func(ctx context.Context, id, email, name string) error

// Identity rejects requests without X-User-ID or X-User-Email with 401 and
// oversized values with 400. Accepted identities are stashed in the context
// and passed to ensure (when non-nil). A failing ensure is logged and does not
// block the request.
func Identity(ensure EnsureUserFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		email := strings.TrimSpace(c.GetHeader(HeaderUserEmail))
		name := strings.TrimSpace(c.GetHeader(HeaderUserName))

		if id == "" || email == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "X-User-ID and X-User-Email headers are required")
			return
		}
		if len(id) > maxUserIDLen || len(email) > maxUserEmailLen || len(name) > maxUserNameLen {
			abortJSON(c, http.StatusBadRequest, "bad_request", "identity header too long")
			return
		}

		c.Set(ctxKeyUserID, id)
		c.Set(ctxKeyUserEmail, email)
		c.Set(ctxKeyUserName, name)

		if ensure != nil {
			if err := ensure(c.Request.Context(), id, email, name); err != nil {
				log.Warn().Err(err).Str("user_id", id).Msg("user registration failed")
			}
		}
		c.Next()
	}
}

// UserID returns the identity stored by Identity, or "".
func UserID(c *gin.Context) string { return c.GetString(ctxKeyUserID) }

// UserEmail returns the caller email stored by Identity, or "".
func UserEmail(c *gin.Context) string { return c.GetString(ctxKeyUserEmail) }

// abortJSON writes the standard error envelope. Middleware cannot use the
// handlers package helpers without an import cycle.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
