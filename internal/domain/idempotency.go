package domain

import "time"

// Idempotency records the prompt request produced for an Idempotency-Key,
// keyed by (user_id, tool_id, key). A retried POST with the same key is
// answered from the stored PromptRequest without consuming quota or calling
// the provider again.
type Idempotency struct {
	ID              string    `gorm:"type:varchar(36);not null;primaryKey"`
	UserID          string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_user_tool_key,priority:1"`
	ToolID          string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_user_tool_key,priority:2"`
	Key             string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_user_tool_key,priority:3"`
	PromptRequestID string    `gorm:"type:varchar(36);not null"`
	Status          int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt       time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
