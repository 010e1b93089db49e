// Stats HTTP handler.
//
//   - GET /stats   (usage snapshot for the caller)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/http/middleware"
)

// GetStats godoc
// @ID          getStats
// @Summary     Usage statistics
// @Description Total and today's request counts, the request limit with what is left of it,
// @Description and a zero-filled seven-day series ending today.
// @Tags        Stats
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Success     200  {object}  domain.UsageSnapshot
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	snap, err := h.usage.Snapshot(c.Request.Context(), userID(c))
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("usage snapshot failed")
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, "could not compute statistics")
		return
	}
	ok(c, http.StatusOK, snap)
}
