package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, "missing-project", func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ConcurrentActivateFlipsOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := &domain.Project{UserID: "u1", Name: "Site", Status: domain.StatusPending, CreatedAt: time.Now()}
	require.NoError(t, s.CreateProject(ctx, p))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		flips int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ActivateProjectIfPending(ctx, "u1", p.ID, time.Now())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				flips++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, flips)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sub := &domain.Submission{Form: domain.FormLead, Fields: map[string]string{"name": "Alice"}}
	require.NoError(t, s.CreateSubmission(ctx, sub))

	sub.Fields["name"] = "Mallory"
	got, err := s.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Fields["name"])

	got.Fields["name"] = "Eve"
	again, err := s.GetSubmission(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Fields["name"])
}
