package mail

import (
	"context"
	"log/slog"

	"gopkg.in/gomail.v2"

	"github.com/fkhayef/tripsplit/internal/config"
)

// Sender delivers a single message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender from the SMTP settings
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the relay and delivers msg
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	return s.dialer.DialAndSend(m)
}

// LogSender only logs messages; used when no SMTP host is configured
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.Warn("SMTP not configured, skipping email", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender returns an SMTP sender, or a LogSender when cfg has no host
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return LogSender{}
	}
	return NewSMTPSender(cfg)
}
