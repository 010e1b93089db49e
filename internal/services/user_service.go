package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/repo"
)

// UserService keeps the users table in step with the identities asserted by
// the upstream auth proxy and answers quota-limit lookups.
type UserService struct {
	DB           *gorm.DB
	DefaultLimit int

	// seen caches id -> "email\x00name" for identities already upserted by
	// this process, so repeat requests skip the write.
	seen sync.Map
}

// NewUserService returns a UserService granting defaultLimit to new users.
func NewUserService(db *gorm.DB, defaultLimit int) *UserService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultRequestLimit
	}
	return &UserService{DB: db, DefaultLimit: defaultLimit}
}

// Ensure upserts the user identified by id. Email and name are refreshed
// when they change; the request limit is only set on first sight.
func (s *UserService) Ensure(ctx context.Context, id, email, name string) error {
	id = strings.TrimSpace(id)
	email = strings.ToLower(strings.TrimSpace(email))
	if id == "" || email == "" {
		return ErrIdentityRequired
	}
	fp := email + "\x00" + strings.TrimSpace(name)
	if v, ok := s.seen.Load(id); ok && v.(string) == fp {
		return nil
	}
	if _, err := repo.EnsureUser(ctx, s.DB, id, email, name, s.DefaultLimit); err != nil {
		return err
	}
	s.seen.Store(id, fp)
	return nil
}

// LimitFor returns the request limit of userID, or DefaultLimit for an
// identity that has no row yet.
func (s *UserService) LimitFor(ctx context.Context, userID string) (int, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return s.DefaultLimit, nil
	}
	if err != nil {
		return 0, err
	}
	return u.RequestLimit, nil
}
