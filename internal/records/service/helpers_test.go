package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeSender struct {
	mu    sync.Mutex
	sent  []domain.Submission
	err   error
	panic bool
}

func (f *fakeSender) Notify(ctx context.Context, sub domain.Submission) error {
	if f.panic {
		panic("mailer exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub)
	if f.err != nil {
		return &domain.DeliveryError{RecordID: sub.ID, Err: f.err}
	}
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// failingStore fails the operations named in failOn.
type failingStore struct {
	*repository.MemoryStore
	failOn map[string]bool
}

var errStoreDown = errors.New("store unavailable")

func (f *failingStore) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	if f.failOn["CreateSubmission"] {
		return errStoreDown
	}
	return f.MemoryStore.CreateSubmission(ctx, s)
}

func (f *failingStore) ActivateProjectIfPending(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	if f.failOn["ActivateProjectIfPending"] {
		return false, errStoreDown
	}
	return f.MemoryStore.ActivateProjectIfPending(ctx, userID, id, now)
}

func (f *failingStore) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	if f.failOn["ListProjects"] {
		return nil, errStoreDown
	}
	return f.MemoryStore.ListProjects(ctx, userID)
}

func waitDeliveries(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))
}

func strPtr(s string) *string { return &s }
