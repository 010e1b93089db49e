package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/repo"
	"github.com/promptforge/promptforge-api/internal/utils"
)

// HistoryService returns a user's most recent prompt requests.
type HistoryService struct {
	DB           *gorm.DB
	DefaultLimit int // used when the caller passes limit <= 0
	MaxLimit     int // hard cap on limit
}

// ByEmail resolves email to a user and returns up to limit of that user's
// records, newest first. Only the caller's own history is visible: an email
// belonging to someone else is reported as ErrUserNotFound so lookups do not
// reveal which addresses are registered.
func (s *HistoryService) ByEmail(ctx context.Context, callerID, email string, limit int) (*domain.User, []domain.PromptRequest, error) {
	tr := otel.Tracer("services/HistoryService")
	ctx, span := tr.Start(ctx, "ByEmail",
		trace.WithAttributes(
			attribute.String("user.id", callerID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil, ErrEmailRequired
	}

	u, err := repo.FindUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if callerID != "" && u.ID != callerID {
		return nil, nil, ErrUserNotFound
	}

	items, err := repo.ListPromptRequestsByUser(ctx, s.DB, u.ID, s.clamp(limit))
	if err != nil {
		return nil, nil, err
	}
	return u, items, nil
}

// Stats returns the record count and newest CreatedAt for userID, used to
// build history ETags.
func (s *HistoryService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.PromptRequestsStats(ctx, s.DB, userID)
}

func (s *HistoryService) clamp(limit int) int {
	def := s.DefaultLimit
	if def <= 0 {
		def = 50
	}
	return utils.ClampLimit(limit, def, s.MaxLimit)
}
