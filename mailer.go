package curio

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers transactional mail, currently only password reset links.
// Deployments plug in their SMTP integration via WithMailer; the default
// just logs the would-be delivery.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type logMailer struct {
	log *zap.Logger
}

func (m logMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.log.Info("mail (not delivered, no mailer configured)",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}
