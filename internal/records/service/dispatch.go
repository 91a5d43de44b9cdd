package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/internal/logging"
	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// Sender delivers the notification for one persisted submission.
type Sender interface {
	Notify(ctx context.Context, sub domain.Submission) error
}

// Dispatcher runs deliveries off the request path. A delivery never
// affects the response that triggered it.
type Dispatcher struct {
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, logger: logger.Named("dispatch")}
}

// Dispatch starts delivery for sub and returns immediately. ctx is used for
// its values only; cancelling it does not stop the delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, sub domain.Submission) {
	if d == nil || d.sender == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := logging.For(ctx, d.logger).With(zap.String("record_id", sub.ID))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("notification panicked", zap.Any("panic", r))
			}
		}()

		err := d.sender.Notify(ctx, sub)
		if err == nil {
			return
		}
		var de *domain.DeliveryError
		if errors.As(err, &de) {
			log.Error("notification delivery failed", zap.Error(de.Err))
			return
		}
		log.Error("notification failed", zap.Error(err))
	}()
}

// Wait blocks until every started delivery has finished or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
