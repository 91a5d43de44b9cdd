package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

// Message is a rendered notification ready for a transport.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers one message. Implementations make a single attempt.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Options struct {
	From       string
	To         []string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
}

// Notifier renders submissions and hands them to a Mailer. A Notifier built
// without a Mailer is disabled and every Notify is a no-op.
type Notifier struct {
	mailer  Mailer
	from    string
	to      []string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

func New(mailer Mailer, opts Options, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 4
	}
	return &Notifier{
		mailer:  mailer,
		from:    opts.From,
		to:      append([]string(nil), opts.To...),
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		logger:  logger.Named("notify"),
	}
}

// Disabled returns a Notifier that never sends.
func Disabled(logger *zap.Logger) *Notifier {
	return New(nil, Options{}, logger)
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.mailer != nil
}

// Notify sends one notification for a persisted submission. Any failure is
// returned as a *domain.DeliveryError.
func (n *Notifier) Notify(ctx context.Context, sub domain.Submission) error {
	if !n.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		return &domain.DeliveryError{RecordID: sub.ID, Err: err}
	}

	msg := Compose(sub)
	msg.From = n.from
	msg.To = n.to

	start := time.Now()
	if err := n.mailer.Send(ctx, msg); err != nil {
		return &domain.DeliveryError{RecordID: sub.ID, Err: err}
	}
	n.logger.Info("notification sent",
		zap.String("record_id", sub.ID),
		zap.String("form", string(sub.Form)),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
