package mailer

import (
	"context"

	"log/slog"

	"classroom-service/internal/config"
)

// ConsoleMailer writes the message to the log instead of sending it.
type ConsoleMailer struct {
	from   string
	logger *slog.Logger
}

var _ Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(cfg *config.EmailConfig, logger *slog.Logger) *ConsoleMailer {
	return &ConsoleMailer{from: cfg.FromEmail, logger: logger}
}

func (m *ConsoleMailer) SendVerificationCode(_ context.Context, toEmail, username, code string) error {
	m.logger.Info("verification email",
		"from", m.from,
		"to", toEmail,
		"subject", verificationSubject(),
		"body", verificationText(username, code),
	)
	return nil
}
