package notifications

import (
	"capstonehub/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

type noopMailer struct{}

func (noopMailer) Send(string, string, string) error { return nil }

// NoopMailer returns a mailer that silently drops every message. Used when
// email delivery is disabled by a feature flag.
func NoopMailer() Mailer {
	return noopMailer{}
}

// NewMailer builds an SMTP mailer from configuration. An empty SMTP host
// disables email delivery entirely, which is the default for local
// development and tests.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
