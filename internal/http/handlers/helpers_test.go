package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/http/middleware"
	"github.com/promptforge/promptforge-api/internal/services"
)

// ---------- stubs ----------

type stubPrompts struct {
	submit func(context.Context, services.SubmitInput) (*services.SubmitResult, error)
	last   services.SubmitInput
}

func (s *stubPrompts) Submit(ctx context.Context, in services.SubmitInput) (*services.SubmitResult, error) {
	s.last = in
	if s.submit != nil {
		return s.submit(ctx, in)
	}
	return &services.SubmitResult{Record: &domain.PromptRequest{ID: "p1", Response: "ok"}}, nil
}

type stubHistory struct {
	byEmail func(context.Context, string, string, int) (*domain.User, []domain.PromptRequest, error)
	count   int64
	newest  *time.Time
}

func (s *stubHistory) ByEmail(ctx context.Context, callerID, email string, limit int) (*domain.User, []domain.PromptRequest, error) {
	if s.byEmail != nil {
		return s.byEmail(ctx, callerID, email, limit)
	}
	return &domain.User{ID: callerID, Email: email}, nil, nil
}

func (s *stubHistory) Stats(context.Context, string) (int64, *time.Time, error) {
	return s.count, s.newest, nil
}

type stubUsage struct {
	snap *domain.UsageSnapshot
	err  error
}

func (s *stubUsage) Snapshot(context.Context, string) (*domain.UsageSnapshot, error) {
	return s.snap, s.err
}

// ---------- helpers ----------

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

// newTestRouter mounts the handlers the way the API group does, behind the
// identity middleware with a no-op user upsert.
func newTestRouter(t *testing.T, h *Handlers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))

	g := r.Group("/api", middleware.Identity(nil))
	g.GET("/tools", h.ListTools)
	g.GET("/tools/categories", h.ListCategories)
	g.GET("/tools/category/:category", h.ListByCategory)
	g.GET("/tools/search/:query", h.SearchTools)
	g.GET("/tools/history", h.GetHistory)
	g.POST("/tools/history", h.PostHistory)
	g.GET("/tools/:id", h.GetTool)
	g.POST("/tools/:id/prompt", h.PostPrompt)
	g.GET("/stats", h.GetStats)
	return r
}

// do issues a request as user u1 <dev@example.com> unless headers override it.
func do(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserEmail, "dev@example.com")
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return er
}
