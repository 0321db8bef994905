// Package notify delivers upload outcome summaries.
//
// SMTPMailer sends real mail through go-mail. LogMailer writes the message
// to the log and is used when SMTP is not configured.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/JonMunkholm/csvrelay/internal/config"
)

// SMTPMailer sends one plain-text message per call to a fixed recipient list.
type SMTPMailer struct {
	client *mail.Client
	from   string
	to     []string
}

// NewSMTPMailer builds a mailer from cfg. Authentication is enabled only
// when a username is configured.
func NewSMTPMailer(cfg config.NotifyConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	to := splitRecipients(cfg.To)
	if len(to) == 0 {
		return nil, errors.New("at least one recipient is required")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From, to: to}, nil
}

// Send implements core.Mailer.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	msg, err := NewMessage(m.from, m.to, subject, body)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// NewMessage builds the plain-text message for one notification.
func NewMessage(from string, to []string, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(to...); err != nil {
		return nil, fmt.Errorf("invalid recipients: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}

// LogMailer logs notifications instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer. A nil logger uses slog.Default.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// Send implements core.Mailer. It never fails.
func (m *LogMailer) Send(ctx context.Context, subject, body string) error {
	m.logger.InfoContext(ctx, "notification", "subject", subject, "body", body)
	return nil
}

func splitRecipients(s string) []string {
	var out []string
	for _, addr := range strings.Split(s, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
