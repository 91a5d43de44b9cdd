package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/internal/logging"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/idempotency"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

const (
	receivedMessage = "Submission received successfully"

	maxIdempotencyKeyLen = 200

	DefaultListLimit = 100
	MaxListLimit     = 500
)

// IdempotencyGuard binds client supplied keys to stored records.
type IdempotencyGuard interface {
	Reserve(ctx context.Context, scope, key string) (idempotency.Reservation, error)
	Complete(ctx context.Context, scope, key, recordID string) error
	Release(ctx context.Context, scope, key string) error
}

type SubmitResult struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Duplicate bool   `json:"duplicate"`
}

// SubmissionService turns form payloads into durable records and hands each
// new record to the Dispatcher once the write has succeeded.
type SubmissionService struct {
	store      repository.SubmissionStore
	dispatcher *Dispatcher
	guard      IdempotencyGuard
	logger     *zap.Logger
	now        func() time.Time
}

// NewSubmissionService wires the submit flow. guard may be nil, which
// disables idempotency.
func NewSubmissionService(store repository.SubmissionStore, dispatcher *Dispatcher, guard IdempotencyGuard, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		store:      store,
		dispatcher: dispatcher,
		guard:      guard,
		logger:     logger.Named("submissions"),
		now:        time.Now,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, kind domain.FormKind, payload map[string]any, idemKey string) (*SubmitResult, error) {
	form, ok := domain.FormByKind(kind)
	if !ok {
		return nil, domain.NewValidationError("unknown form", string(kind))
	}
	if len(idemKey) > maxIdempotencyKeyLen {
		return nil, domain.NewValidationError("idempotency key too long")
	}

	fields, err := domain.NormalizePayload(payload)
	if err != nil {
		return nil, err
	}
	if missing := form.Missing(fields); len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields", missing...)
	}

	log := logging.For(ctx, s.logger).With(zap.String("form", string(kind)))

	reserved := false
	if idemKey != "" && s.guard != nil {
		res, err := s.guard.Reserve(ctx, string(kind), idemKey)
		switch {
		case err != nil:
			log.Warn("idempotency unavailable, accepting submission without it", zap.Error(err))
		case res.Outcome == idempotency.Replay:
			log.Info("duplicate submission", zap.String("record_id", res.RecordID))
			return &SubmitResult{ID: res.RecordID, Message: receivedMessage, Duplicate: true}, nil
		case res.Outcome == idempotency.InFlight:
			return nil, domain.ErrSubmissionInFlight
		default:
			reserved = true
		}
	}

	sub := domain.Submission{
		Form:      kind,
		Fields:    fields,
		CreatedAt: s.now().UTC(),
	}
	if form.HasStatus {
		sub.Status = domain.StatusPending
	}

	if err := s.store.CreateSubmission(ctx, &sub); err != nil {
		if reserved {
			if rerr := s.guard.Release(context.WithoutCancel(ctx), string(kind), idemKey); rerr != nil {
				log.Warn("release idempotency key", zap.Error(rerr))
			}
		}
		return nil, domain.Persistence("create submission", err)
	}

	if reserved {
		if err := s.guard.Complete(ctx, string(kind), idemKey, sub.ID); err != nil {
			log.Warn("bind idempotency key", zap.String("record_id", sub.ID), zap.Error(err))
			// An unbound pending key would answer 409 until it expires.
			if rerr := s.guard.Release(context.WithoutCancel(ctx), string(kind), idemKey); rerr != nil {
				log.Warn("release idempotency key", zap.Error(rerr))
			}
		}
	}

	log.Info("submission stored", zap.String("record_id", sub.ID))
	s.dispatcher.Dispatch(ctx, sub)

	return &SubmitResult{ID: sub.ID, Message: receivedMessage}, nil
}

// List returns the newest submissions, optionally for one form. limit is
// clamped to MaxListLimit; zero means DefaultListLimit.
func (s *SubmissionService) List(ctx context.Context, kind domain.FormKind, limit int) ([]domain.Submission, error) {
	if kind != "" {
		if _, ok := domain.FormByKind(kind); !ok {
			return nil, domain.NewValidationError("unknown form", string(kind))
		}
	}
	switch {
	case limit < 0:
		return nil, domain.NewValidationError("limit must be positive")
	case limit == 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	items, err := s.store.ListSubmissions(ctx, kind, limit)
	if err != nil {
		return nil, domain.Persistence("list submissions", err)
	}
	return items, nil
}
