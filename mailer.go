package accounts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is the message handed to the delivery provider.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// VerificationEmail builds the message carrying the account's verification
// link: {baseURL}/api/auth/verify/{code}.
func VerificationEmail(baseURL, to, code string) Email {
	link := fmt.Sprintf("%s/api/auth/verify/%s", baseURL, code)
	return Email{
		To:      to,
		Subject: "Verify email",
		HTML:    fmt.Sprintf(`<a target="_blank" href="%s">Click verify email</a>`, link),
	}
}

// SendGridMailer delivers email through the SendGrid v3 API. Single attempt,
// no retry or backoff; callers decide whether a failure is fatal.
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
	logger Logger
}

var _ Mailer = (*SendGridMailer)(nil)

// NewSendGridMailer returns a mailer sending from the given address.
func NewSendGridMailer(apiKey, sender string) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		sender: sender,
		logger: defLogger{},
	}
}

func (m *SendGridMailer) WithLogger(logger Logger) *SendGridMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send delivers one message. Non-2xx provider responses surface as
// ErrDeliveryFailed with the status attached as metadata.
func (m *SendGridMailer) Send(ctx context.Context, email Email) error {
	from := mail.NewEmail("", m.sender)
	to := mail.NewEmail("", email.To)
	message := mail.NewSingleEmail(from, email.Subject, to, "", email.HTML)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		m.logger.Error("mailer send failed", "to", email.To, "error", err)
		return errors.Wrap(err, ErrDeliveryFailed.Category, ErrDeliveryFailed.Message).
			WithTextCode(ErrDeliveryFailed.TextCode)
	}

	if resp.StatusCode >= 300 {
		m.logger.Error("mailer provider rejected message", "to", email.To, "status", resp.StatusCode)
		return errors.New(ErrDeliveryFailed.Message, ErrDeliveryFailed.Category).
			WithTextCode(ErrDeliveryFailed.TextCode).
			WithCode(ErrDeliveryFailed.Code).
			WithMetadata(map[string]any{
				"status": resp.StatusCode,
			})
	}

	return nil
}
