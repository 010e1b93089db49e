// History HTTP handlers.
//
// This file exposes the caller's prompt history:
//   - GET  /tools/history?email=…   (ETag support)
//   - POST /tools/history {email}
//
// Both return the most recent records (newest first) for the user the email
// resolves to. Only the caller's own address resolves; anything else is 404.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/http/middleware"
	"github.com/promptforge/promptforge-api/internal/services"
	"github.com/promptforge/promptforge-api/internal/utils"
)

// HistoryRequest is the JSON payload for POST /tools/history.
type HistoryRequest struct {
	Email string `json:"email" example:"dev@example.com"`
}

// GetHistory godoc
// @ID          getHistory
// @Summary     Prompt history
// @Description Returns the caller's most recent prompt requests, newest first.
// @Description Sends a weak ETag; a matching If-None-Match yields 304.
// @Tags        History
// @Produce     json
// @Param       X-User-ID      header  string  true   "Caller identity"
// @Param       X-User-Email   header  string  true   "Caller email"
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
// @Param       email          query   string  true   "Email the history belongs to"  example(dev@example.com)
// @Param       limit          query   int     false  "Max records"  minimum(1) maximum(100) default(50)
// @Success     200  {array}   domain.PromptRequest
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing email"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /tools/history [get]
func (h *Handlers) GetHistory(c *gin.Context) {
	h.serveHistory(c, c.Query("email"), true)
}

// PostHistory godoc
// @ID          postHistory
// @Summary     Prompt history (email in body)
// @Tags        History
// @Accept      json
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Param       limit         query   int     false "Max records"  minimum(1) maximum(100) default(50)
// @Param       body          body    handlers.HistoryRequest  true  "Email payload"
// @Success     200  {array}   domain.PromptRequest
// @Failure     400  {object}  handlers.ErrorResponse  "Missing email"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /tools/history [post]
func (h *Handlers) PostHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}
	h.serveHistory(c, req.Email, false)
}

func (h *Handlers) serveHistory(c *gin.Context, email string, conditional bool) {
	ctx := c.Request.Context()
	uid := userID(c)
	limit := utils.AtoiDefault(strings.TrimSpace(c.Query("limit")), 0)

	u, items, err := h.history.ByEmail(ctx, uid, email, limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailRequired):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		default:
			middleware.LoggerFrom(c).Error().Err(err).Msg("history lookup failed")
			fail(c, http.StatusInternalServerError, ErrCodeHistoryFailed, "could not load history")
		}
		return
	}

	// ETag (best effort): changes whenever a record is added.
	if conditional {
		if count, newest, err := h.history.Stats(ctx, u.ID); err == nil {
			var ts int64
			if newest != nil {
				ts = newest.UnixNano()
			}
			etag := fmt.Sprintf(`W/"history:%s:%d:%d:%d"`, u.ID, count, ts, len(items))
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	ok(c, http.StatusOK, items)
}
