package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/idempotency"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/repository"
)

type submitFixture struct {
	store      *repository.MemoryStore
	sender     *fakeSender
	dispatcher *Dispatcher
	svc        *SubmissionService
}

func newSubmitFixture(t *testing.T, guard IdempotencyGuard) *submitFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)
	svc := NewSubmissionService(store, d, guard, nil)
	svc.now = func() time.Time { return fixedNow }
	return &submitFixture{store: store, sender: sender, dispatcher: d, svc: svc}
}

func leadPayload() map[string]any {
	return map[string]any{
		"name":     "Alice",
		"phone":    "+94 77 123 4567",
		"email":    "alice@example.com",
		"idea":     "  a booking app ",
		"referrer": "newsletter",
	}
}

func newGuard(t *testing.T) *idempotency.Guard {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return idempotency.NewGuard(client, time.Hour)
}

func TestSubmit_MissingRequiredFieldPersistsNothing(t *testing.T) {
	f := newSubmitFixture(t, nil)
	payload := leadPayload()
	delete(payload, "email")
	payload["phone"] = "   "

	_, err := f.svc.Submit(context.Background(), domain.FormLead, payload, "")
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"phone", "email"}, ve.Fields)

	waitDeliveries(t, f.dispatcher)
	items, err := f.store.ListSubmissions(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, f.sender.count())
}

func TestSubmit_StoresVerbatimAndNotifies(t *testing.T) {
	f := newSubmitFixture(t, nil)

	res, err := f.svc.Submit(context.Background(), domain.FormLead, leadPayload(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.False(t, res.Duplicate)
	assert.Equal(t, "Submission received successfully", res.Message)

	items, err := f.store.ListSubmissions(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "  a booking app ", got.Fields["idea"])
	assert.Equal(t, "newsletter", got.Fields["referrer"])
	assert.Empty(t, got.Status)

	waitDeliveries(t, f.dispatcher)
	require.Equal(t, 1, f.sender.count())
	assert.Equal(t, res.ID, f.sender.sent[0].ID)
}

func TestSubmit_ProjectFormDefaultsPending(t *testing.T) {
	f := newSubmitFixture(t, nil)

	res, err := f.svc.Submit(context.Background(), domain.FormProject, map[string]any{
		"name":      "Bob",
		"startDate": "2025-04-01",
		"budget":    float64(2500),
	}, "")
	require.NoError(t, err)

	got, err := f.store.GetSubmission(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "2500", got.Fields["budget"])
}

func TestSubmit_TransportFailureStillSucceeds(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := repository.NewMemoryStore()
	sender := &fakeSender{err: errors.New("dial tcp: i/o timeout")}
	d := NewDispatcher(sender, zap.New(core))
	svc := NewSubmissionService(store, d, nil, zap.New(core))

	res, err := svc.Submit(context.Background(), domain.FormLead, leadPayload(), "")
	require.NoError(t, err)
	waitDeliveries(t, d)

	got, err := store.GetSubmission(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Fields["name"])
	assert.Equal(t, 1, logs.FilterMessage("notification delivery failed").Len())
}

func TestSubmit_StoreFailureIsPersistenceError(t *testing.T) {
	guard := newGuard(t)
	store := &failingStore{MemoryStore: repository.NewMemoryStore(), failOn: map[string]bool{"CreateSubmission": true}}
	sender := &fakeSender{}
	d := NewDispatcher(sender, nil)
	svc := NewSubmissionService(store, d, guard, nil)

	_, err := svc.Submit(context.Background(), domain.FormLead, leadPayload(), "key-1")
	var pe *domain.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.ErrorIs(t, err, errStoreDown)

	waitDeliveries(t, d)
	assert.Zero(t, sender.count())

	// The reservation was released, so a retry with the same key writes.
	store.failOn = nil
	res, err := svc.Submit(context.Background(), domain.FormLead, leadPayload(), "key-1")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	guard := newGuard(t)
	f := newSubmitFixture(t, guard)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, domain.FormLead, leadPayload(), "key-1")
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, domain.FormLead, leadPayload(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Duplicate)

	waitDeliveries(t, f.dispatcher)
	assert.Equal(t, 1, f.sender.count())
	items, err := f.store.ListSubmissions(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSubmit_KeyInFlight(t *testing.T) {
	guard := newGuard(t)
	f := newSubmitFixture(t, guard)
	ctx := context.Background()

	_, err := guard.Reserve(ctx, string(domain.FormLead), "key-1")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, domain.FormLead, leadPayload(), "key-1")
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
}

func TestSubmit_RedisDownDegrades(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	f := newSubmitFixture(t, idempotency.NewGuard(client, time.Hour))
	mr.Close()

	res, err := f.svc.Submit(context.Background(), domain.FormLead, leadPayload(), "key-1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
}

func TestSubmit_RejectsBadInput(t *testing.T) {
	f := newSubmitFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "survey", leadPayload(), "")
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	payload := leadPayload()
	payload["tags"] = []any{"a", "b"}
	_, err = f.svc.Submit(ctx, domain.FormLead, payload, "")
	assert.True(t, errors.As(err, &ve))

	long := make([]byte, maxIdempotencyKeyLen+1)
	for i := range long {
		long[i] = 'k'
	}
	_, err = f.svc.Submit(ctx, domain.FormLead, leadPayload(), string(long))
	assert.True(t, errors.As(err, &ve))
}

func TestSubmissionList(t *testing.T) {
	f := newSubmitFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Submit(ctx, domain.FormLead, leadPayload(), "")
		require.NoError(t, err)
	}
	_, err := f.svc.Submit(ctx, domain.FormProject, map[string]any{"name": "Bob", "startDate": "2025-04-01"}, "")
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	projects, err := f.svc.List(ctx, domain.FormProject, 0)
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	limited, err := f.svc.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	_, err = f.svc.List(ctx, "survey", 0)
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = f.svc.List(ctx, "", -1)
	assert.True(t, errors.As(err, &ve))
}

type mockGuard struct {
	mock.Mock
}

func (m *mockGuard) Reserve(ctx context.Context, scope, key string) (idempotency.Reservation, error) {
	args := m.Called(ctx, scope, key)
	return args.Get(0).(idempotency.Reservation), args.Error(1)
}

func (m *mockGuard) Complete(ctx context.Context, scope, key, recordID string) error {
	return m.Called(ctx, scope, key, recordID).Error(0)
}

func (m *mockGuard) Release(ctx context.Context, scope, key string) error {
	return m.Called(ctx, scope, key).Error(0)
}

func TestSubmit_UnboundKeyIsReleased(t *testing.T) {
	guard := &mockGuard{}
	guard.On("Reserve", mock.Anything, "lead", "key-1").
		Return(idempotency.Reservation{Outcome: idempotency.Reserved}, nil)
	guard.On("Complete", mock.Anything, "lead", "key-1", mock.AnythingOfType("string")).
		Return(errors.New("redis timeout"))
	guard.On("Release", mock.Anything, "lead", "key-1").Return(nil)

	f := newSubmitFixture(t, guard)
	res, err := f.svc.Submit(context.Background(), domain.FormLead, leadPayload(), "key-1")
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	waitDeliveries(t, f.dispatcher)

	guard.AssertExpectations(t)
	assert.Equal(t, 1, f.sender.count())
}
