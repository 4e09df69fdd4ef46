// internal/pkg/email/smtp.go
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/gooddrive/autoparts-backend/internal/config"
)

// Sender delivers a plain-text email
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay with optional AUTH
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPSender builds a sender from the notification configuration
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host: cfg.Notification.SMTPHost,
		port: cfg.Notification.SMTPPort,
		user: cfg.Notification.SMTPUser,
		pass: cfg.Notification.SMTPPass,
		from: cfg.Notification.FromEmail,
	}
}

// Send delivers one message. The body is sent as text/plain UTF-8.
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
