// Package events publishes prompt lifecycle notifications to downstream
// consumers (usage dashboards, billing). Publishing is best effort: the
// pipeline logs and counts failures and never fails a request because of
// them.
package events

import (
	"context"
	"time"

	"github.com/promptforge/promptforge-api/internal/domain"
)

// PromptCompleted is the payload published after a prompt request has been
// persisted. It carries no prompt or response bodies; consumers that need
// them read the record by ID.
type PromptCompleted struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ToolID    string    `json:"tool_id"`
	Status    string    `json:"status"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRecord builds the event for rec.
func FromRecord(rec *domain.PromptRequest) PromptCompleted {
	return PromptCompleted{
		ID:        rec.ID,
		UserID:    rec.UserID,
		ToolID:    rec.ToolID,
		Status:    rec.Status,
		Fallback:  rec.Fallback,
		CreatedAt: rec.CreatedAt,
	}
}

// Publisher delivers prompt events.
type Publisher interface {
	PublishPromptCompleted(ctx context.Context, rec *domain.PromptRequest) error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

// PublishPromptCompleted implements Publisher.
func (Noop) PublishPromptCompleted(context.Context, *domain.PromptRequest) error { return nil }
