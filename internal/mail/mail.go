// Package mail sends the transactional messages the auth flows depend on:
// email confirmation links and password reset links.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers a plain-text message to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTP builds an SMTPMailer using STARTTLS and plain auth.
func NewSMTP(host string, port int, username, password, from string) (*SMTPMailer, error) {
	client, err := gomail.NewClient(host,
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(username),
		gomail.WithPassword(password),
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("configure smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers a message synchronously.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogMailer logs messages instead of sending them. Used in development when
// no SMTP relay is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// Send records the message and succeeds.
func (m LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.Logger.Info("mail suppressed (no smtp configured)", "to", to, "subject", subject, "body", body)
	return nil
}
