// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// PromptRequest model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreatePromptRequest(ctx, db, rec) -> error
//     Inserts a record, assigning a UUID and UTC timestamp when unset.
//
//   - GetPromptRequest(ctx, db, id, userID) -> *domain.PromptRequest, error
//     Fetches a single record owned by userID, or ErrNotFound.
//
//   - ListPromptRequestsByUser(ctx, db, userID, limit) -> []domain.PromptRequest, error
//     Returns the newest records for a user, most recent first.
//
//   - CountPromptRequests(ctx, db, userID) -> (int64, error)
//     Returns the total number of records owned by the user.
//
//   - ListPromptRequestTimesSince(ctx, db, userID, since) -> []time.Time, error
//     Returns creation times at or after since, oldest first, for bucketing.
//
// This repository is wrapped by the service layer (see
// services.PromptService and services.UsageService).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePromptRequest inserts rec. A missing ID is filled with a random UUID
// and a zero CreatedAt with the current UTC time.
func CreatePromptRequest(ctx context.Context, db *gorm.DB, rec *domain.PromptRequest) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = domain.StatusCompleted
	}
	return db.WithContext(ctx).Create(rec).Error
}

// GetPromptRequest fetches a record by id scoped to its owner.
func GetPromptRequest(ctx context.Context, db *gorm.DB, id, userID string) (*domain.PromptRequest, error) {
	var rec domain.PromptRequest
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListPromptRequestsByUser returns up to limit records for userID, newest
// first. Ties on CreatedAt are broken by id so pagination is stable.
func ListPromptRequestsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.PromptRequest, error) {
	out := []domain.PromptRequest{}
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountPromptRequests returns the total number of records owned by userID.
func CountPromptRequests(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PromptRequest{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListPromptRequestTimesSince returns the creation times of userID's records
// at or after since, oldest first. Bucketing by calendar day happens in the
// caller so the reference time zone is not tied to the database dialect.
func ListPromptRequestTimesSince(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]time.Time, error) {
	var rows []struct {
		CreatedAt time.Time
	}
	err := db.WithContext(ctx).
		Model(&domain.PromptRequest{}).
		Select("created_at").
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.CreatedAt
	}
	return out, nil
}
