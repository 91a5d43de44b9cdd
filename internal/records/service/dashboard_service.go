package service

import (
	"context"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

type DashboardService struct {
	projects repository.ProjectStore
	bookings repository.BookingStore
}

func NewDashboardService(projects repository.ProjectStore, bookings repository.BookingStore) *DashboardService {
	return &DashboardService{projects: projects, bookings: bookings}
}

// Stats counts the owner's projects per status and their live bookings.
func (s *DashboardService) Stats(ctx context.Context, uid string) (*domain.DashboardStats, error) {
	if err := requireUser(uid); err != nil {
		return nil, err
	}

	counts, err := s.projects.CountProjectsByStatus(ctx, uid)
	if err != nil {
		return nil, domain.Persistence("count projects", err)
	}
	total, err := s.bookings.CountBookings(ctx, uid)
	if err != nil {
		return nil, domain.Persistence("count bookings", err)
	}

	return &domain.DashboardStats{
		PendingProjects:   counts[domain.StatusPending],
		ActiveProjects:    counts[domain.StatusActive],
		CompletedProjects: counts[domain.StatusCompleted],
		CancelledProjects: counts[domain.StatusCancelled],
		TotalBookings:     total,
	}, nil
}
