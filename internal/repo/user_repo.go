// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User
// model.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/promptforge/promptforge-api/internal/domain"
)

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail fetches a user by email, compared case-insensitively, or
// ErrNotFound.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser inserts the user or, when the id already exists, refreshes its
// email and name. RequestLimit is only set on insert (defaultLimit), so an
// operator-adjusted limit survives later logins.
func EnsureUser(ctx context.Context, db *gorm.DB, id, email, name string, defaultLimit int) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:           id,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		RequestLimit: defaultLimit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, db, id)
}

// UpdateRequestLimit sets the quota allowance for a user.
func UpdateRequestLimit(ctx context.Context, db *gorm.DB, id string, limit int) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("request_limit", limit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
