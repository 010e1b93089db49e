// Package domain defines the persistence models for users and their prompt
// requests. These types are mapped with GORM and form the core data layer
// of the PromptForge API.
package domain

import (
	"time"
)

// Prompt request statuses. A record is written once, already carrying a
// terminal status; StatusPending exists for stores that insert before the
// provider call completes.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DefaultRequestLimit is the per-window allowance granted to new users.
const DefaultRequestLimit = 1000

// User is an identity known to the API. Users are created on first sight
// from the headers injected by the upstream auth proxy; credentials never
// reach this service.
//
// Fields:
//   - ID: identifier issued by the auth provider (primary key).
//   - Email: unique address used by history lookups.
//   - Name: display name, informational only.
//   - RequestLimit: quota allowance per rolling window.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID           string    `json:"id"            gorm:"type:varchar(64);primaryKey"`
	Email        string    `json:"email"         gorm:"type:varchar(320);not null;uniqueIndex:ux_users_email"`
	Name         string    `json:"name"          gorm:"type:varchar(255);not null;default:''"`
	RequestLimit int       `json:"request_limit" gorm:"not null;default:1000"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// PromptRequest is the durable record of one tool invocation: the raw
// prompt, the text returned to the caller, and whether that text came from
// the fallback responder.
//
// ToolID is captured verbatim and is not a foreign key into the catalog, so
// history survives catalog changes.
type PromptRequest struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_prompts,priority:1"`
	ToolID    string    `json:"tool_id"    gorm:"type:varchar(64);not null;index"`
	Prompt    string    `json:"prompt"     gorm:"type:text;not null"`
	Response  string    `json:"response"   gorm:"type:text;not null"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null;default:'completed';check:status IN ('pending','completed','failed')"`
	Fallback  bool      `json:"fallback"   gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_prompts,priority:2"`
}

// TableName returns the database table name for PromptRequest.
func (PromptRequest) TableName() string { return "prompt_requests" }
