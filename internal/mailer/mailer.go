package mailer

import (
	"context"
	"fmt"

	"log/slog"

	"classroom-service/internal/config"
)

// Mailer delivers transactional email. The only message this service
// sends today is the registration verification code.
type Mailer interface {
	SendVerificationCode(ctx context.Context, toEmail, username, code string) error
}

// New selects the delivery backend from configuration. Without a
// SendGrid key the console mailer is used, which is what local
// development runs on.
func New(cfg *config.EmailConfig, logger *slog.Logger) Mailer {
	if cfg.SendgridKey != "" {
		return NewSendgridMailer(cfg)
	}
	logger.Warn("SENDGRID_API_KEY not set, verification codes will be logged to stdout")
	return NewConsoleMailer(cfg, logger)
}

func verificationSubject() string {
	return "Verify your email address"
}

func verificationText(username, code string) string {
	return fmt.Sprintf(
		"Hi %s,\n\nYour verification code is: %s\n\nThe code expires shortly. If you did not request it, ignore this message.\n",
		username, code,
	)
}

func verificationHTML(username, code string) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p><p>Your verification code is: <strong>%s</strong></p><p>The code expires shortly. If you did not request it, ignore this message.</p>",
		username, code,
	)
}
