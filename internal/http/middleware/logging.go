// Package middleware contains the Gin middleware shared by the HTTP layer:
// correlation IDs, the redacting access log, panic recovery, caller
// identity, idempotency key validation, the per-address ceiling, Prometheus
// instrumentation and security headers.
//
// The expected order is RequestID, RedactingLogger, Recovery, so that
// panics and errors are logged with the correlation ID attached.
package middleware

import (
	"net/http"
	"runtime/debug"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	// maxRequestIDLen bounds client-supplied correlation IDs.
	maxRequestIDLen = 128
	// maxQueryLogLength caps the bytes of raw query string logged.
	maxQueryLogLength = 2048
	ctxKeyLogger      = "logger"
)

// RequestID reuses the caller's X-Request-ID when it is a short printable
// token and generates a UUIDv4 otherwise. The ID is echoed on the response
// and stored under the "requestID" context key.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

func validRequestID(s string) bool {
	if s == "" || len(s) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] <= ' ' || s[i] > '~' {
			return false
		}
	}
	return true
}

// Recovery turns a panic into a logged stack trace and, if nothing has been
// written yet, the standard JSON 500 envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := c.GetString(requestIDKey)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger installed by RedactingLogger,
// tagged with user_id once Identity has run. Without an access logger it
// falls back to the global logger, so the result is never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			if uid := UserID(c); uid != "" {
				l := lg.With().Str("user_id", uid).Logger()
				return &l
			}
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// truncate cuts s to at most max bytes on a rune boundary and appends an
// ellipsis. max <= 0 disables truncation.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
