package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs every 15 minutes. Schedules carry a seconds field.
const DefaultSchedule = "0 */15 * * * *"

// OrphanStore removes bookings whose project no longer exists.
type OrphanStore interface {
	DeleteOrphanBookings(ctx context.Context) (int64, error)
}

// Sweeper reclaims bookings left behind by a cascade that did not finish.
type Sweeper struct {
	store    OrphanStore
	logger   *zap.Logger
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
}

func New(store OrphanStore, schedule string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Sweeper{
		store:    store,
		logger:   logger.Named("sweeper"),
		schedule: schedule,
		timeout:  time.Minute,
	}
}

// Start registers the job and starts the scheduler in the background.
func (s *Sweeper) Start() error {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("schedule orphan sweep %q: %w", s.schedule, err)
	}

	s.cron = c
	c.Start()
	s.logger.Info("orphan sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep, bounded by ctx.
func (s *Sweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("orphan sweep still running at shutdown")
	}
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteOrphanBookings(ctx)
	if err != nil {
		s.logger.Error("orphan sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		s.logger.Info("orphan bookings removed", zap.Int64("count", n))
	} else {
		s.logger.Debug("no orphan bookings")
	}
	return n, nil
}
