// Prompt HTTP handler.
//
// This file exposes the tool-invocation endpoint:
//   - POST /tools/{id}/prompt   (run a prompt through a tool)
//
// The handler is transport-thin: it normalizes the prompt text, delegates to
// the PromptService, and maps the pipeline's error taxonomy onto statuses.
// Quota figures are reported through X-RateLimit-* headers; a denial adds
// Retry-After.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a stored result exists
// for (user, tool, key), the stored response is returned with
// `Idempotency-Replayed: true` and no quota is consumed.
package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/http/middleware"
	"github.com/promptforge/promptforge-api/internal/quota"
	"github.com/promptforge/promptforge-api/internal/services"
)

//
// DTOs
//

// PostPromptRequest is the JSON payload for a tool invocation.
type PostPromptRequest struct {
	// Prompt is the caller's input (code, question, …). It must be non-empty.
	Prompt string `json:"prompt" example:"function f(){ return }"`
}

// PostPromptResponse carries the plain-text answer.
type PostPromptResponse struct {
	// ID of the stored prompt request.
	ID string `json:"id" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	// Response is markdown-free text (or the fallback notice).
	Response string `json:"response" example:"1. List of Issues\n- missing return value"`
	// Fallback is true when the provider could not be used.
	Fallback bool `json:"fallback" example:"false"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeContent normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxPromptRunes inspects the concrete PromptService for its prompt
// length cap so error messages can state it.
func discoverMaxPromptRunes(svc PromptService) int {
	if ps, ok := svc.(*services.PromptService); ok && ps.MaxPromptRunes > 0 {
		return ps.MaxPromptRunes
	}
	return 0
}

// retryAfter renders d as whole seconds, at least 1.
func retryAfter(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// setQuotaHeaders reports the caller's allowance after this request.
func setQuotaHeaders(c *gin.Context, d quota.Decision) {
	if d.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining()))
	if !d.ResetAt.IsZero() {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

//
// Handlers
//

// PostPrompt godoc
// @ID          postPrompt
// @Summary     Run a prompt through a tool
// @Description Wraps the prompt in the tool's instruction template and asks the model.
// @Description Without a provider credential (or on provider failure) a fixed fallback text is returned.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Prompts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true  "Caller identity"  example(user123)
// @Param       X-User-Email     header  string  true  "Caller email"     example(dev@example.com)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Tool id"          example(fix-bug)
// @Param       body             body    handlers.PostPromptRequest  true  "Prompt payload"
//
// @Success     200  {object}  handlers.PostPromptResponse  "Model (or fallback) answer"
// @Failure     400  {object}  handlers.ErrorResponse       "Empty or oversized prompt"
// @Failure     401  {object}  handlers.ErrorResponse       "Missing identity"
// @Failure     404  {object}  handlers.ErrorResponse       "Unknown tool"
// @Failure     429  {object}  handlers.ErrorResponse       "Quota exceeded"
// @Failure     500  {object}  handlers.ErrorResponse       "Internal error"
// @Router      /tools/{id}/prompt [post]
func (h *Handlers) PostPrompt(c *gin.Context) {
	toolID := c.Param("id")

	var req PostPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	res, err := h.prompts.Submit(c.Request.Context(), services.SubmitInput{
		UserID:         userID(c),
		ToolID:         toolID,
		Prompt:         sanitizeContent(req.Prompt),
		IdempotencyKey: idemKey,
	})
	if err != nil {
		h.promptError(c, toolID, err)
		return
	}

	if res.Replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	} else {
		setQuotaHeaders(c, res.Quota)
	}
	ok(c, http.StatusOK, PostPromptResponse{
		ID:       res.Record.ID,
		Response: res.Record.Response,
		Fallback: res.Record.Fallback,
	})
}

// promptError maps pipeline errors onto the error envelope. Unclassified
// errors are logged and reported without detail.
func (h *Handlers) promptError(c *gin.Context, toolID string, err error) {
	var qe *services.QuotaError
	var nf *services.ToolNotFoundError
	switch {
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt required")
	case errors.Is(err, services.ErrTooLong):
		msg := "prompt too long"
		if n := discoverMaxPromptRunes(h.prompts); n > 0 {
			msg = fmt.Sprintf("prompt too long: max %d runes", n)
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
	case errors.Is(err, services.ErrIdentityRequired):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "identity required")
	case errors.As(err, &nf):
		resp := ErrorResponse{Code: ErrCodeNotFound, Message: "tool not found", Suggestion: nf.Suggestion}
		failWith(c, http.StatusNotFound, resp)
	case errors.As(err, &qe):
		c.Header("Retry-After", retryAfter(qe.RetryAfter))
		setQuotaHeaders(c, quota.Decision{Limit: qe.Limit, Used: qe.Limit, ResetAt: qe.ResetAt})
		fail(c, http.StatusTooManyRequests, ErrCodeQuotaExceeded,
			fmt.Sprintf("request quota of %d exceeded", qe.Limit))
	default:
		middleware.LoggerFrom(c).Error().Err(err).Str("tool_id", toolID).Msg("prompt pipeline failed")
		fail(c, http.StatusInternalServerError, ErrCodePromptFailed, "could not process prompt")
	}
}
