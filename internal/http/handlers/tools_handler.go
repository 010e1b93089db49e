// Tool catalog HTTP handlers.
//
// This file exposes the read-only catalog:
//   - GET /tools                      (all tools, catalog order)
//   - GET /tools/categories           (distinct categories, first-seen order)
//   - GET /tools/category/{category}  (exact, case-sensitive category match)
//   - GET /tools/search/{query}       (case-insensitive name/description match)
//   - GET /tools/{id}                 (one tool, 404 with a suggestion)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/catalog"
)

// ListTools godoc
// @ID          listTools
// @Summary     List tools
// @Description Returns every tool in catalog order.
// @Tags        Tools
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"  example(user123)
// @Param       X-User-Email  header  string  true  "Caller email"     example(dev@example.com)
// @Success     200  {array}   catalog.ToolDefinition
// @Failure     401  {object}  handlers.ErrorResponse  "Missing identity"
// @Router      /tools [get]
func (h *Handlers) ListTools(c *gin.Context) {
	ok(c, http.StatusOK, h.tools.List())
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List tool categories
// @Tags        Tools
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Success     200  {array}   string
// @Router      /tools/categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	ok(c, http.StatusOK, h.tools.Categories())
}

// ListByCategory godoc
// @ID          listToolsByCategory
// @Summary     List tools in a category
// @Description Category match is exact and case-sensitive. An unknown category yields an empty list.
// @Tags        Tools
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Param       category      path    string  true  "Category name"  example(Security)
// @Success     200  {array}   catalog.ToolDefinition
// @Router      /tools/category/{category} [get]
func (h *Handlers) ListByCategory(c *gin.Context) {
	ok(c, http.StatusOK, h.tools.ListByCategory(c.Param("category")))
}

// SearchTools godoc
// @ID          searchTools
// @Summary     Search tools
// @Description Case-insensitive substring match on name or description.
// @Tags        Tools
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Param       query         path    string  true  "Search text"  example(test)
// @Success     200  {array}   catalog.ToolDefinition
// @Failure     400  {object}  handlers.ErrorResponse  "Blank query"
// @Router      /tools/search/{query} [get]
func (h *Handlers) SearchTools(c *gin.Context) {
	q := strings.TrimSpace(c.Param("query"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query required")
		return
	}
	ok(c, http.StatusOK, h.tools.Search(q))
}

// GetTool godoc
// @ID          getTool
// @Summary     Get a tool
// @Tags        Tools
// @Produce     json
// @Param       X-User-ID     header  string  true  "Caller identity"
// @Param       X-User-Email  header  string  true  "Caller email"
// @Param       id            path    string  true  "Tool id"  example(fix-bug)
// @Success     200  {object}  catalog.ToolDefinition
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown tool (with suggestion)"
// @Router      /tools/{id} [get]
func (h *Handlers) GetTool(c *gin.Context) {
	id := c.Param("id")
	t, err := h.tools.Get(id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.toolNotFound(c, id)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
		return
	}
	ok(c, http.StatusOK, t)
}

// toolNotFound writes the 404 envelope with the closest known id, if any.
func (h *Handlers) toolNotFound(c *gin.Context, id string) {
	resp := ErrorResponse{Code: ErrCodeNotFound, Message: "tool not found"}
	if sug, found := h.tools.Suggest(id); found {
		resp.Suggestion = sug
	}
	failWith(c, http.StatusNotFound, resp)
}
