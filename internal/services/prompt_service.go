// Package services – PromptService
//
// This file implements PromptService, the orchestrator of the tool
// invocation pipeline. A submission is validated, resolved against the tool
// catalog, charged against the caller's quota, rendered into the tool's
// instruction template, and sent to the completion provider (which falls
// back to a fixed reply on any failure). The resulting record is returned to
// the caller immediately and persisted in the background.
//
// Observability: Submit is OpenTelemetry-instrumented and every outcome is
// counted in the promptforge_prompts_total collector.

package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/internal/catalog"
	"github.com/promptforge/promptforge-api/internal/domain"
	"github.com/promptforge/promptforge-api/internal/events"
	"github.com/promptforge/promptforge-api/internal/metrics"
	"github.com/promptforge/promptforge-api/internal/provider"
	"github.com/promptforge/promptforge-api/internal/quota"
	"github.com/promptforge/promptforge-api/internal/repo"
)

// ToolCatalog is the subset of *catalog.Catalog the pipeline needs.
type ToolCatalog interface {
	Get(id string) (catalog.ToolDefinition, error)
	Render(id, prompt string) (string, error)
	Suggest(id string) (string, bool)
}

// Completer produces a reply for a rendered instruction. It never fails;
// provider problems are reported through Reply.Fallback.
type Completer interface {
	Invoke(ctx context.Context, instruction string) provider.Reply
}

// LimitSource resolves an identity's quota allowance.
type LimitSource interface {
	LimitFor(ctx context.Context, userID string) (int, error)
}

// SubmitInput is one prompt submission.
type SubmitInput struct {
	UserID         string
	ToolID         string
	Prompt         string
	IdempotencyKey string // optional
}

// SubmitResult is the outcome of a successful submission.
type SubmitResult struct {
	Record   *domain.PromptRequest
	Replayed bool           // served from a stored record for the same Idempotency-Key
	Quota    quota.Decision // zero on replays
}

// PromptService runs the tool invocation pipeline.
type PromptService struct {
	DB      *gorm.DB
	Catalog ToolCatalog
	Quota   quota.Guard
	Gateway Completer
	Limits  LimitSource
	Events  events.Publisher

	MaxPromptRunes int           // 0 disables the length check
	PersistTimeout time.Duration // budget for the background save
	IdempotencyTTL time.Duration // lifetime of stored Idempotency-Key mappings

	wg  sync.WaitGroup
	now func() time.Time
}

func (s *PromptService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}

// Submit runs the pipeline for in.
//
// Errors: ErrEmptyPrompt, ErrTooLong, *ToolNotFoundError (ErrToolNotFound),
// *QuotaError (ErrQuotaExceeded), or an internal error. Provider failures
// are not errors; the record then carries the fallback text.
func (s *PromptService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	tr := otel.Tracer("services/PromptService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", in.UserID),
			attribute.String("tool.id", in.ToolID),
			attribute.Bool("idempotency.key_present", in.IdempotencyKey != ""),
		),
	)
	defer span.End()

	toolID := strings.TrimSpace(in.ToolID)
	prompt := strings.TrimSpace(in.Prompt)
	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrIdentityRequired
	}
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(prompt) > s.MaxPromptRunes {
		return nil, ErrTooLong
	}

	if in.IdempotencyKey != "" {
		if rec := s.replay(ctx, in.UserID, toolID, in.IdempotencyKey); rec != nil {
			metrics.PromptsTotal.WithLabelValues(toolID, metrics.OutcomeReplayed).Inc()
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return &SubmitResult{Record: rec, Replayed: true}, nil
		}
	}

	if _, err := s.Catalog.Get(toolID); err != nil {
		nf := &ToolNotFoundError{ToolID: toolID}
		if sug, ok := s.Catalog.Suggest(toolID); ok {
			nf.Suggestion = sug
		}
		return nil, nf
	}

	limit, err := s.Limits.LimitFor(ctx, in.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "limit lookup")
		return nil, err
	}

	decision, err := s.Quota.Authorize(ctx, in.UserID, limit)
	switch {
	case err != nil:
		// Backend errors fail open.
		metrics.QuotaErrors.Inc()
		log.Warn().Err(err).Str("user_id", in.UserID).Msg("quota check failed, allowing request")
		decision = quota.Decision{Allowed: true, Limit: limit}
	case !decision.Allowed:
		metrics.PromptsTotal.WithLabelValues(toolID, metrics.OutcomeDenied).Inc()
		span.SetAttributes(attribute.Bool("quota.denied", true))
		return nil, &QuotaError{Limit: decision.Limit, RetryAfter: decision.RetryAfter, ResetAt: decision.ResetAt}
	}

	instruction, err := s.Catalog.Render(toolID, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	reply := s.Gateway.Invoke(ctx, instruction)

	rec := &domain.PromptRequest{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ToolID:    toolID,
		Prompt:    prompt,
		Response:  reply.Text,
		Status:    domain.StatusCompleted,
		Fallback:  reply.Fallback,
		CreatedAt: s.clock(),
	}
	outcome := metrics.OutcomeCompleted
	if reply.Fallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.PromptsTotal.WithLabelValues(toolID, outcome).Inc()
	span.SetAttributes(attribute.Bool("provider.fallback", reply.Fallback))

	saved := *rec
	s.persistAsync(ctx, &saved, in.IdempotencyKey)

	return &SubmitResult{Record: rec, Quota: decision}, nil
}

// replay returns the stored record for a live Idempotency-Key, or nil.
// Lookup failures are treated as a miss.
func (s *PromptService) replay(ctx context.Context, userID, toolID, key string) *domain.PromptRequest {
	idem, err := repo.GetIdempotency(ctx, s.DB, userID, toolID, key, s.clock())
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("user_id", userID).Msg("idempotency lookup failed")
		}
		return nil
	}
	rec, err := repo.GetPromptRequest(ctx, s.DB, idem.PromptRequestID, userID)
	if err != nil {
		return nil
	}
	return rec
}

// persistAsync saves rec (and the Idempotency-Key mapping, if any) in one
// transaction off the request path, then publishes the completion event.
// The save outlives the request: it keeps ctx's values (trace, logger) but
// not its cancellation, and is bounded by PersistTimeout instead.
func (s *PromptService) persistAsync(ctx context.Context, rec *domain.PromptRequest, idemKey string) {
	base := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		pctx := base
		if s.PersistTimeout > 0 {
			var cancel context.CancelFunc
			pctx, cancel = context.WithTimeout(base, s.PersistTimeout)
			defer cancel()
		}

		err := s.DB.WithContext(pctx).Transaction(func(tx *gorm.DB) error {
			if err := repo.CreatePromptRequest(pctx, tx, rec); err != nil {
				return err
			}
			if idemKey == "" {
				return nil
			}
			ttl := s.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, err := repo.CreateIdempotency(pctx, tx, rec.UserID, rec.ToolID, idemKey, rec.ID, http.StatusOK, ttl)
			if errors.Is(err, repo.ErrDuplicate) {
				return nil
			}
			return err
		})
		if err != nil {
			metrics.PersistFailures.Inc()
			log.Error().Err(err).
				Str("prompt_request_id", rec.ID).
				Str("user_id", rec.UserID).
				Str("tool_id", rec.ToolID).
				Msg("failed to persist prompt request")
			return
		}

		if s.Events == nil {
			return
		}
		if err := s.Events.PublishPromptCompleted(pctx, rec); err != nil {
			metrics.EventPublishFailures.Inc()
			log.Warn().Err(err).Str("prompt_request_id", rec.ID).Msg("failed to publish prompt event")
		}
	}()
}

// Wait blocks until every background save started so far has finished.
func (s *PromptService) Wait() { s.wg.Wait() }

// Drain is Wait bounded by ctx. It returns ctx.Err() if saves are still
// running when ctx is done.
func (s *PromptService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
