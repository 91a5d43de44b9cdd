package repository

import (
	"context"
	"time"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// ProjectStore persists owner-scoped projects. Lookups by a foreign owner
// behave exactly like lookups of a missing id.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *domain.Project) error
	GetProject(ctx context.Context, userID, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, userID string) ([]domain.Project, error)
	UpdateProject(ctx context.Context, userID, id string, patch domain.ProjectPatch, now time.Time) (*domain.Project, error)
	// ActivateProjectIfPending flips a pending project to active in one
	// conditional write and reports whether it did.
	ActivateProjectIfPending(ctx context.Context, userID, id string, now time.Time) (bool, error)
	// DeleteProjectCascade removes the project and every booking that
	// references it, returning how many bookings went with it.
	DeleteProjectCascade(ctx context.Context, userID, id string) (int64, error)
	CountProjectsByStatus(ctx context.Context, userID string) (map[domain.Status]int64, error)
}

// BookingStore persists bookings. Reads never return a booking whose
// project no longer exists.
type BookingStore interface {
	CreateBooking(ctx context.Context, b *domain.Booking) error
	GetBooking(ctx context.Context, userID, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdateBooking(ctx context.Context, userID, id string, patch domain.BookingPatch) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, userID, id string) error
	CountBookings(ctx context.Context, userID string) (int64, error)
	CountBookingsForProject(ctx context.Context, projectID string) (int64, error)
	DeleteOrphanBookings(ctx context.Context) (int64, error)
}

type SubmissionStore interface {
	CreateSubmission(ctx context.Context, s *domain.Submission) error
	GetSubmission(ctx context.Context, id string) (*domain.Submission, error)
	// ListSubmissions returns the newest submissions first; an empty form
	// lists every form.
	ListSubmissions(ctx context.Context, form domain.FormKind, limit int) ([]domain.Submission, error)
}

// Store is the full record store used by the services.
type Store interface {
	ProjectStore
	BookingStore
	SubmissionStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
