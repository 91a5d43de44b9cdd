package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/internal/logging"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

type BookingInput struct {
	ProjectID *string `json:"projectId"`
	Date      *string `json:"date"`
	Duration  *string `json:"duration"`
	Status    *string `json:"status"`
}

// BookingService handles owner-scoped bookings. It needs the project store
// to check the referenced project and to activate it.
type BookingService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewBookingService(store repository.Store, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{store: store, logger: logger.Named("bookings"), now: time.Now}
}

// Create books against a project the caller owns. A pending project becomes
// active with its first booking.
func (s *BookingService) Create(ctx context.Context, uid string, in BookingInput) (*domain.Booking, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	var missing []string
	if blank(in.ProjectID) {
		missing = append(missing, "projectId")
	}
	if blank(in.Date) {
		missing = append(missing, "date")
	}
	if blank(in.Duration) {
		missing = append(missing, "duration")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError("missing required fields", missing...)
	}

	patch, err := in.patch()
	if err != nil {
		return nil, err
	}

	projectID := strings.TrimSpace(*in.ProjectID)
	project, err := s.store.GetProject(ctx, uid, projectID)
	if err != nil {
		return nil, domain.Persistence("get project", err)
	}

	now := s.now().UTC()
	b := &domain.Booking{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Date:        *patch.Date,
		Duration:    *patch.Duration,
		Status:      domain.StatusPending,
		UserID:      uid,
		CreatedAt:   now,
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, domain.Persistence("create booking", err)
	}

	log := logging.For(ctx, s.logger).With(zap.String("booking_id", b.ID), zap.String("project_id", project.ID))

	activated, err := s.store.ActivateProjectIfPending(ctx, uid, project.ID, now)
	if err != nil {
		log.Error("activate project after booking", zap.Error(err))
		// Roll the booking back so a failed create leaves nothing behind.
		if derr := s.store.DeleteBooking(context.WithoutCancel(ctx), uid, b.ID); derr != nil {
			log.Error("roll back booking", zap.Error(derr))
		}
		return nil, domain.Persistence("activate project", err)
	}
	if activated {
		project.Status = domain.StatusActive
		project.UpdatedAt = now
		log.Info("project activated by first booking")
	}

	b.Project = project
	log.Info("booking created")
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, uid, id string) (*domain.Booking, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	b, err := s.store.GetBooking(ctx, uid, id)
	if err != nil {
		return nil, domain.Persistence("get booking", err)
	}
	return b, nil
}

// List returns the owner's bookings, newest first, each with its project.
func (s *BookingService) List(ctx context.Context, uid string) ([]domain.Booking, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	items, err := s.store.ListBookings(ctx, uid)
	if err != nil {
		return nil, domain.Persistence("list bookings", err)
	}
	return items, nil
}

// Update changes date, duration or status. The project reference is fixed.
func (s *BookingService) Update(ctx context.Context, uid, id string, in BookingInput) (*domain.Booking, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	b, err := s.store.UpdateBooking(ctx, uid, id, patch)
	if err != nil {
		return nil, domain.Persistence("update booking", err)
	}
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, uid, id string) error {
	if err := requireUser(uid); err != nil {
		return err
	}
	if err := s.store.DeleteBooking(ctx, uid, id); err != nil {
		return domain.Persistence("delete booking", err)
	}
	return nil
}

func (in BookingInput) patch() (domain.BookingPatch, error) {
	var patch domain.BookingPatch
	if err := checkText("duration", in.Duration); err != nil {
		return patch, err
	}

	if in.Date != nil {
		t, err := parseDate("date", *in.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &t
	}
	if in.Duration != nil {
		d := strings.TrimSpace(*in.Duration)
		if d == "" {
			return patch, domain.NewValidationError("duration must not be blank", "duration")
		}
		patch.Duration = &d
	}
	if in.Status != nil {
		st := domain.Status(strings.TrimSpace(*in.Status))
		if !domain.IsBookingStatus(st) {
			return patch, domain.NewValidationError("invalid status", "status")
		}
		patch.Status = &st
	}
	return patch, nil
}
