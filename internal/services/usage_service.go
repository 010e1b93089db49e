package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/metrics"
	"github.com/promptforge/promptforge-api/internal/quota"
	"github.com/promptforge/promptforge-api/internal/repo"
)

// usageDays is the length of the daily usage series, today included.
const usageDays = 7

// UsageService derives usage statistics from stored prompt requests and the
// live quota window. It never writes.
type UsageService struct {
	DB       *gorm.DB
	Quota    quota.Guard
	Limits   LimitSource
	Location *time.Location // calendar-day boundaries; UTC when nil

	now func() time.Time
}

// Snapshot returns usage figures for userID. A user without history gets a
// zero snapshot with seven zero-count days.
func (s *UsageService) Snapshot(ctx context.Context, userID string) (*domain.UsageSnapshot, error) {
	tr := otel.Tracer("services/UsageService")
	ctx, span := tr.Start(ctx, "Snapshot",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now()
	if s.now != nil {
		now = s.now()
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(usageDays - 1))

	total, err := repo.CountPromptRequests(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	times, err := repo.ListPromptRequestTimesSince(ctx, s.DB, userID, first)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, usageDays)
	for _, t := range times {
		counts[t.In(loc).Format(time.DateOnly)]++
	}
	daily := make([]domain.DailyUsage, usageDays)
	for i := range daily {
		d := first.AddDate(0, 0, i).Format(time.DateOnly)
		daily[i] = domain.DailyUsage{Date: d, Count: counts[d]}
	}

	limit, err := s.Limits.LimitFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &domain.UsageSnapshot{
		TotalRequests: total,
		RequestsToday: daily[usageDays-1].Count,
		RequestLimit:  limit,
		Remaining:     limit,
		DailyUsage:    daily,
	}
	if s.Quota != nil {
		dec, err := s.Quota.Peek(ctx, userID, limit)
		if err != nil {
			metrics.QuotaErrors.Inc()
			log.Warn().Err(err).Str("user_id", userID).Msg("quota peek failed, reporting full allowance")
		} else {
			snap.Remaining = dec.Remaining()
			if !dec.ResetAt.IsZero() {
				r := dec.ResetAt.UTC()
				snap.ResetAt = &r
			}
		}
	}
	return snap, nil
}
