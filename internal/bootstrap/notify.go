package bootstrap

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/config"
	"github.com/PrimeSandy/Alpha-Dev/internal/notify"
)

// BuildNotifier selects the mail transport once at startup. Without one the
// returned Notifier is disabled.
func BuildNotifier(ctx context.Context, cfg config.MailConfig, log *zap.Logger) (*notify.Notifier, error) {
	var mailer notify.Mailer
	switch cfg.Transport {
	case "":
		log.Info("mail not configured, notifications disabled")
		return notify.Disabled(log), nil
	case config.MailSMTP:
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	case config.MailSES:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.SESRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.SESRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		mailer = notify.NewSESMailerFromConfig(awsCfg)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}

	log.Info("mail notifications enabled",
		zap.String("transport", cfg.Transport),
		zap.Strings("to", cfg.To),
	)
	return notify.New(mailer, notify.Options{
		From:       cfg.From,
		To:         cfg.To,
		Timeout:    cfg.Timeout,
		RatePerSec: cfg.RatePerSec,
		Burst:      cfg.Burst,
	}, log), nil
}
