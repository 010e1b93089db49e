// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers consume and the
// Handlers type that binds them. Concrete implementations live in
// internal/catalog and internal/services; tests substitute stubs.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/http/middleware"
	"github.com/promptforge/promptforge-api/internal/services"
)

//
// Service contracts (context-aware)
//

// ToolCatalog is the read-only tool registry.
type ToolCatalog interface {
	List() []catalog.ToolDefinition
	Get(id string) (catalog.ToolDefinition, error)
	Categories() []string
	ListByCategory(category string) []catalog.ToolDefinition
	Search(query string) []catalog.ToolDefinition
	Suggest(id string) (string, bool)
}

// PromptService runs the tool-invocation pipeline.
type PromptService interface {
	// Submit validates, authorizes, renders and answers one prompt.
	Submit(ctx context.Context, in services.SubmitInput) (*services.SubmitResult, error)
}

// HistoryService reads a caller's past prompt requests.
type HistoryService interface {
	// ByEmail resolves email and returns up to limit records, newest first.
	ByEmail(ctx context.Context, callerID, email string, limit int) (*domain.User, []domain.PromptRequest, error)
	// Stats returns the record count and newest timestamp for ETags.
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// UsageService computes usage snapshots.
type UsageService interface {
	Snapshot(ctx context.Context, userID string) (*domain.UsageSnapshot, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for tools, prompts, history and stats.
type Handlers struct {
	tools   ToolCatalog
	prompts PromptService
	history HistoryService
	usage   UsageService
}

// New constructs a Handlers instance bound to the given services.
func New(tools ToolCatalog, prompts PromptService, history HistoryService, usage UsageService) *Handlers {
	return &Handlers{tools: tools, prompts: prompts, history: history, usage: usage}
}

// userID returns the caller identity resolved by middleware.Identity.
func userID(c *gin.Context) string { return middleware.UserID(c) }
