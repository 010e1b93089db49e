package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/http/middleware"
)

func TestTools_ListAndCategories(t *testing.T) {
	cat := testCatalog(t)
	r := newTestRouter(t, New(cat, &stubPrompts{}, &stubHistory{}, &stubUsage{}))

	w := do(r, http.MethodGet, "/api/tools", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}
	var tools []catalog.ToolDefinition
	if err := json.Unmarshal(w.Body.Bytes(), &tools); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tools) != len(cat.List()) || tools[0].ID != cat.List()[0].ID {
		t.Fatalf("unexpected tools: %d", len(tools))
	}

	w = do(r, http.MethodGet, "/api/tools/categories", nil, nil)
	var cats []string
	if err := json.Unmarshal(w.Body.Bytes(), &cats); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if w.Code != http.StatusOK || len(cats) != len(cat.Categories()) {
		t.Fatalf("categories status=%d got=%v", w.Code, cats)
	}
}

func TestTools_RequireIdentity(t *testing.T) {
	r := newTestRouter(t, New(testCatalog(t), &stubPrompts{}, &stubHistory{}, &stubUsage{}))

	w := do(r, http.MethodGet, "/api/tools", nil, map[string]string{middleware.HeaderUserID: ""})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decodeError(t, w); er.Code != ErrCodeUnauthorized {
		t.Fatalf("code=%q", er.Code)
	}
}

func TestTools_ByCategoryAndSearch(t *testing.T) {
	r := newTestRouter(t, New(testCatalog(t), &stubPrompts{}, &stubHistory{}, &stubUsage{}))

	cases := []struct {
		name    string
		path    string
		wantLen int
		wantID  string
	}{
		{"category exact", "/api/tools/category/Security", 1, "security-audit"},
		{"category case-sensitive", "/api/tools/category/security", 0, ""},
		{"category with space", "/api/tools/category/Code%20Translation", 1, "convert-language"},
		{"search name", "/api/tools/search/REGEX", 1, "generate-regex"},
		{"search none", "/api/tools/search/zzzz", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tc.path, nil, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			var got []catalog.ToolDefinition
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != tc.wantLen {
				t.Fatalf("len=%d want %d: %+v", len(got), tc.wantLen, got)
			}
			if tc.wantID != "" && got[0].ID != tc.wantID {
				t.Fatalf("id=%q want %q", got[0].ID, tc.wantID)
			}
		})
	}

	// Results are never null.
	w := do(r, http.MethodGet, "/api/tools/search/zzzz", nil, nil)
	if w.Body.String() != "[]" {
		t.Fatalf("want empty array, got %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/tools/search/%20", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank query status=%d", w.Code)
	}
}

func TestTools_GetKnownAndUnknown(t *testing.T) {
	r := newTestRouter(t, New(testCatalog(t), &stubPrompts{}, &stubHistory{}, &stubUsage{}))

	w := do(r, http.MethodGet, "/api/tools/fix-bug", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var tool catalog.ToolDefinition
	if err := json.Unmarshal(w.Body.Bytes(), &tool); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tool.ID != "fix-bug" || tool.Name == "" || tool.PlaceholderPrompt == "" {
		t.Fatalf("unexpected tool: %+v", tool)
	}

	w = do(r, http.MethodGet, "/api/tools/fix-bgu", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	er := decodeError(t, w)
	if er.Code != ErrCodeNotFound || er.Suggestion != "fix-bug" || er.RequestID == "" {
		t.Fatalf("unexpected 404 body: %+v", er)
	}

	w = do(r, http.MethodGet, "/api/tools/completely-unrelated-thing", nil, nil)
	if er := decodeError(t, w); w.Code != http.StatusNotFound || er.Suggestion != "" {
		t.Fatalf("unexpected: %d %+v", w.Code, er)
	}
}
