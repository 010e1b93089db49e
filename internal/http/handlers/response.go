// Package handlers binds the catalog, prompt, history and usage services to
// Gin routes.
//
// Every failure is written through fail/failWith as an ErrorResponse with a
// stable code (errors.go), for example:
//
//	HTTP/1.1 404 Not Found
//	{"request_id":"123e4567-e89b-12d3-a456-426614174000","code":"not_found","message":"tool not found","suggestion":"fix-bug"}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code
	Code string `json:"code" example:"not_found"`
	// Safe to show to users
	Message string `json:"message" example:"resource not found"`
	// Closest known tool id for an unknown one
	Suggestion string `json:"suggestion,omitempty" example:"fix-bug"`
}

func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// failWith aborts with resp, stamping the request ID. 5xx responses are
// logged with the request-scoped logger.
func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail lets the router write the same envelope for NoRoute and NoMethod.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
