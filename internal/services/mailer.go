package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/yukikurage/room-workflow-api/internal/config"
	"github.com/yukikurage/room-workflow-api/pkg/logger"
)

// Mailer delivers a plain-text email
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends mail through the configured SMTP relay
type SMTPMailer struct {
	cfg config.MailConfig
}

// NewMailer returns nil when mail is disabled
func NewMailer(cfg config.MailConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		return nil
	}
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	var message strings.Builder
	fmt.Fprintf(&message, "From: %s\r\n", from)
	fmt.Fprintf(&message, "To: %s\r\n", to)
	fmt.Fprintf(&message, "Subject: %s\r\n", subject)
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	message.WriteString(body)

	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
