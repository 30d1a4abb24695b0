// Package mailer builds and sends the transactional emails (verification
// OTP, welcome, password reset). Email is never on the critical path:
// handlers enqueue through the Dispatcher and a send failure is logged, not
// surfaced to the caller.
package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is one outbound message with both text and HTML bodies.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SendGridSender implements Sender via the SendGrid v3 API.
type SendGridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

// NewSendGrid builds a sender from an injected API key and from-address.
func NewSendGrid(apiKey, fromName, fromAddr string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("sendgrid api key is not configured")
	}
	if fromAddr == "" {
		return nil, fmt.Errorf("mail from-address is not configured")
	}
	return &SendGridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}, nil
}

// Send delivers the email, treating any non-2xx provider response as an
// error.
func (s *SendGridSender) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail("", e.To)
	msg := mail.NewSingleEmail(from, e.Subject, to, e.TextBody, e.HTMLBody)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
