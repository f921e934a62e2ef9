// Package mailer sends outbound mail over SMTP. The contact form is the
// only sender; credentials come from application configuration.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"pedro-backend-go/internal/config"
)

// ErrNotConfigured is returned when SMTP credentials are missing.
var ErrNotConfigured = errors.New("smtp is not configured")

// SMTPMailer implements core.Mailer using net/smtp with STARTTLS-capable
// plain auth, matching the GoDaddy SMTP setup the service runs against.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPMailer builds a mailer from application configuration.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

// Send delivers a multipart (HTML + plain text) message. The context bounds
// the whole delivery; smtp.SendMail itself has no context support, so the
// send runs in a goroutine and the caller's deadline wins.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if m.user == "" || m.pass == "" {
		return ErrNotConfigured
	}
	if to == "" || subject == "" {
		return errors.New("recipient and subject are required")
	}

	msg := m.buildMessage(to, subject, htmlBody, textBody)
	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send mail to '%s': %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail delivery to '%s' aborted: %w", to, ctx.Err())
	}
}

func (m *SMTPMailer) buildMessage(to, subject, htmlBody, textBody string) []byte {
	const boundary = "pedro-mail-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
