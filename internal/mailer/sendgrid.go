package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"classroom-service/internal/config"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridMailer struct {
	key  string
	from *sgmail.Email
}

var _ Mailer = (*SendgridMailer)(nil)

func NewSendgridMailer(cfg *config.EmailConfig) *SendgridMailer {
	return &SendgridMailer{
		key:  cfg.SendgridKey,
		from: sgmail.NewEmail(cfg.FromName, cfg.FromEmail),
	}
}

func (m *SendgridMailer) SendVerificationCode(ctx context.Context, toEmail, username, code string) error {
	p := sgmail.NewPersonalization()
	p.Subject = verificationSubject()
	p.AddTos(sgmail.NewEmail(username, toEmail))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", verificationText(username, code)),
		sgmail.NewContent("text/html", verificationHTML(username, code)),
	)

	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sending verification email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
