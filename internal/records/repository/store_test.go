package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// runStoreSuite exercises the behaviour every driver must share.
func runStoreSuite(t *testing.T, missingProjectID string, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	newProject := func(t *testing.T, s Store, uid, name string, at time.Time) *domain.Project {
		t.Helper()
		p := &domain.Project{
			UserID:    uid,
			Name:      name,
			StartDate: base,
			Status:    domain.StatusPending,
			CreatedAt: at,
			UpdatedAt: at,
		}
		require.NoError(t, s.CreateProject(ctx, p))
		require.NotEmpty(t, p.ID)
		return p
	}

	newBooking := func(t *testing.T, s Store, p *domain.Project, at time.Time) *domain.Booking {
		t.Helper()
		b := &domain.Booking{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Date:        base.Add(24 * time.Hour),
			Duration:    "2h",
			Status:      domain.StatusPending,
			UserID:      p.UserID,
			CreatedAt:   at,
		}
		require.NoError(t, s.CreateBooking(ctx, b))
		require.NotEmpty(t, b.ID)
		return b
	}

	t.Run("projects are owner scoped and listed newest first", func(t *testing.T) {
		s := newStore(t)
		older := newProject(t, s, "u1", "Older", base)
		newer := newProject(t, s, "u1", "Newer", base.Add(time.Minute))
		newProject(t, s, "u2", "Foreign", base)

		list, err := s.ListProjects(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, newer.ID, list[0].ID)
		assert.Equal(t, older.ID, list[1].ID)

		_, err = s.GetProject(ctx, "u2", older.ID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		_, err = s.GetProject(ctx, "u1", "does-not-exist")
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("update applies only provided fields", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)

		name := "Site v2"
		status := domain.StatusCompleted
		later := base.Add(time.Hour)
		got, err := s.UpdateProject(ctx, "u1", p.ID, domain.ProjectPatch{Name: &name, Status: &status}, later)
		require.NoError(t, err)
		assert.Equal(t, "Site v2", got.Name)
		assert.Equal(t, domain.StatusCompleted, got.Status)
		assert.True(t, got.StartDate.Equal(base))
		assert.True(t, got.CreatedAt.Equal(base))
		assert.True(t, got.UpdatedAt.Equal(later))

		_, err = s.UpdateProject(ctx, "u2", p.ID, domain.ProjectPatch{Name: &name}, later)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	t.Run("activate only flips pending projects", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)

		ok, err := s.ActivateProjectIfPending(ctx, "u1", p.ID, base)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.ActivateProjectIfPending(ctx, "u1", p.ID, base)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.GetProject(ctx, "u1", p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)
	})

	t.Run("cascade removes every booking of the project", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)
		keep := newProject(t, s, "u1", "Other", base)
		newBooking(t, s, p, base)
		newBooking(t, s, p, base.Add(time.Minute))
		kept := newBooking(t, s, keep, base)

		_, err := s.DeleteProjectCascade(ctx, "u2", p.ID)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)

		n, err := s.DeleteProjectCascade(ctx, "u1", p.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := s.CountBookingsForProject(ctx, p.ID)
		require.NoError(t, err)
		assert.Zero(t, left)

		_, err = s.GetBooking(ctx, "u1", kept.ID)
		assert.NoError(t, err)
	})

	t.Run("bookings inline their project and hide orphans", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)
		b := newBooking(t, s, p, base)

		got, err := s.GetBooking(ctx, "u1", b.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Project)
		assert.Equal(t, p.ID, got.Project.ID)
		assert.Equal(t, "Site", got.ProjectName)

		_, err = s.GetBooking(ctx, "u2", b.ID)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)

		orphan := newBooking(t, s, &domain.Project{ID: missingProjectID, UserID: "u1", Name: "Gone"}, base.Add(time.Minute))

		_, err = s.GetBooking(ctx, "u1", orphan.ID)
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)

		list, err := s.ListBookings(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, b.ID, list[0].ID)

		n, err := s.CountBookings(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("sweep removes only orphans", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)
		live := newBooking(t, s, p, base)
		newBooking(t, s, &domain.Project{ID: missingProjectID, UserID: "u1", Name: "Gone"}, base)
		newBooking(t, s, &domain.Project{ID: missingProjectID, UserID: "u2", Name: "Gone"}, base)

		n, err := s.DeleteOrphanBookings(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		left, err := s.CountBookingsForProject(ctx, missingProjectID)
		require.NoError(t, err)
		assert.Zero(t, left)

		_, err = s.GetBooking(ctx, "u1", live.ID)
		assert.NoError(t, err)

		n, err = s.DeleteOrphanBookings(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("booking update and delete", func(t *testing.T) {
		s := newStore(t)
		p := newProject(t, s, "u1", "Site", base)
		b := newBooking(t, s, p, base)

		status := domain.StatusConfirmed
		dur := "3h"
		got, err := s.UpdateBooking(ctx, "u1", b.ID, domain.BookingPatch{Status: &status, Duration: &dur})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
		assert.Equal(t, "3h", got.Duration)
		assert.True(t, got.Date.Equal(b.Date))

		_, err = s.UpdateBooking(ctx, "u2", b.ID, domain.BookingPatch{Status: &status})
		assert.ErrorIs(t, err, domain.ErrBookingNotFound)

		assert.ErrorIs(t, s.DeleteBooking(ctx, "u2", b.ID), domain.ErrBookingNotFound)
		require.NoError(t, s.DeleteBooking(ctx, "u1", b.ID))
		assert.ErrorIs(t, s.DeleteBooking(ctx, "u1", b.ID), domain.ErrBookingNotFound)
	})

	t.Run("counts projects by status", func(t *testing.T) {
		s := newStore(t)
		newProject(t, s, "u1", "A", base)
		p := newProject(t, s, "u1", "B", base)
		newProject(t, s, "u2", "C", base)
		_, err := s.ActivateProjectIfPending(ctx, "u1", p.ID, base)
		require.NoError(t, err)

		counts, err := s.CountProjectsByStatus(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[domain.StatusPending])
		assert.Equal(t, int64(1), counts[domain.StatusActive])
		assert.Zero(t, counts[domain.StatusCompleted])
	})

	t.Run("submissions round trip verbatim", func(t *testing.T) {
		s := newStore(t)
		lead := &domain.Submission{
			Form:      domain.FormLead,
			Fields:    map[string]string{"name": "  Alice ", "email": "a@example.com", "referrer": "x"},
			CreatedAt: base,
		}
		require.NoError(t, s.CreateSubmission(ctx, lead))
		proj := &domain.Submission{
			Form:      domain.FormProject,
			Fields:    map[string]string{"name": "Bob", "startDate": "2025-04-01"},
			Status:    domain.StatusPending,
			CreatedAt: base.Add(time.Minute),
		}
		require.NoError(t, s.CreateSubmission(ctx, proj))

		got, err := s.GetSubmission(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, lead.Fields, got.Fields)
		assert.Equal(t, domain.FormLead, got.Form)
		assert.True(t, got.CreatedAt.Equal(base))

		all, err := s.ListSubmissions(ctx, "", 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, proj.ID, all[0].ID)

		leads, err := s.ListSubmissions(ctx, domain.FormLead, 10)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, lead.ID, leads[0].ID)

		_, err = s.GetSubmission(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
	})
}
