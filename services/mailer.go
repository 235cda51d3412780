package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Mailer delivers transactional emails (password resets).
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes messages to the log instead of sending them. It is the
// default until an SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("📧 mail queued")
	return nil
}
