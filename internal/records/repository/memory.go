package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps every record in process memory behind one mutex.
// It backs STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	projects    map[string]domain.Project
	bookings    map[string]domain.Booking
	submissions map[string]domain.Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:    make(map[string]domain.Project),
		bookings:    make(map[string]domain.Booking),
		submissions: make(map[string]domain.Submission),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

func (s *MemoryStore) CreateProject(ctx context.Context, p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	s.projects[p.ID] = cloneProject(*p)
	return nil
}

func (s *MemoryStore) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	out := cloneProject(p)
	return &out, nil
}

func (s *MemoryStore) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Project, 0, 16)
	for _, p := range s.projects {
		if p.UserID == userID {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, userID, id string, patch domain.ProjectPatch, now time.Time) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		end := *patch.EndDate
		p.EndDate = &end
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	p.UpdatedAt = now
	s.projects[id] = p

	out := cloneProject(p)
	return &out, nil
}

func (s *MemoryStore) ActivateProjectIfPending(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID || p.Status != domain.StatusPending {
		return false, nil
	}
	p.Status = domain.StatusActive
	p.UpdatedAt = now
	s.projects[id] = p
	return true, nil
}

func (s *MemoryStore) DeleteProjectCascade(ctx context.Context, userID, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok || p.UserID != userID {
		return 0, domain.ErrProjectNotFound
	}
	delete(s.projects, id)

	var n int64
	for bid, b := range s.bookings {
		if b.ProjectID == id {
			delete(s.bookings, bid)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountProjectsByStatus(ctx context.Context, userID string) (map[domain.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[domain.Status]int64, len(domain.ProjectStatuses))
	for _, p := range s.projects {
		if p.UserID == userID {
			out[p.Status]++
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = uuid.NewString()
	stored := *b
	stored.Project = nil
	s.bookings[b.ID] = stored
	return nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, userID, id string) (*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	out, ok := s.populateLocked(b)
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &out, nil
}

func (s *MemoryStore) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Booking, 0, 16)
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		if pb, ok := s.populateLocked(b); ok {
			out = append(out, pb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateBooking(ctx context.Context, userID, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	if _, ok := s.projects[b.ProjectID]; !ok {
		return nil, domain.ErrBookingNotFound
	}
	if patch.Date != nil {
		b.Date = *patch.Date
	}
	if patch.Duration != nil {
		b.Duration = *patch.Duration
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	s.bookings[id] = b

	out, _ := s.populateLocked(b)
	return &out, nil
}

func (s *MemoryStore) DeleteBooking(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok || b.UserID != userID {
		return domain.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *MemoryStore) CountBookings(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, b := range s.bookings {
		if _, ok := s.projects[b.ProjectID]; ok && b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountBookingsForProject(ctx context.Context, projectID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, b := range s.bookings {
		if b.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) DeleteOrphanBookings(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, b := range s.bookings {
		if _, ok := s.projects[b.ProjectID]; !ok {
			delete(s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ID = uuid.NewString()
	s.submissions[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (s *MemoryStore) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.submissions[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	out := cloneSubmission(sub)
	return &out, nil
}

func (s *MemoryStore) ListSubmissions(ctx context.Context, form domain.FormKind, limit int) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Submission, 0, 16)
	for _, sub := range s.submissions {
		if form == "" || sub.Form == form {
			out = append(out, cloneSubmission(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// populateLocked inlines the referenced project. The second result is
// false for orphaned bookings. Callers hold s.mu.
func (s *MemoryStore) populateLocked(b domain.Booking) (domain.Booking, bool) {
	p, ok := s.projects[b.ProjectID]
	if !ok {
		return domain.Booking{}, false
	}
	pc := cloneProject(p)
	b.Project = &pc
	return b, true
}

func cloneProject(p domain.Project) domain.Project {
	if p.EndDate != nil {
		end := *p.EndDate
		p.EndDate = &end
	}
	return p
}

func cloneSubmission(sub domain.Submission) domain.Submission {
	fields := make(map[string]string, len(sub.Fields))
	for k, v := range sub.Fields {
		fields[k] = v
	}
	sub.Fields = fields
	return sub
}
