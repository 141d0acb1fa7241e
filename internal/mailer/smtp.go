// Package mailer delivers verification codes by e-mail. Delivery is best
// effort: failures are reported to the caller, which logs and drops them.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/startera/internal/prompts"
)

// Sender delivers one verification code to one address.
type Sender interface {
	Send(ctx context.Context, to, code string) error
}

// SMTPConfig is the subset of configuration the SMTP sender needs.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
}

// SMTPSender sends plain-text mails over SMTP with STARTTLS.
type SMTPSender struct {
	from    string
	prompts *prompts.Catalogue
	send    func(msgs ...*gomail.Message) error
}

func NewSMTPSender(cfg SMTPConfig, catalogue *prompts.Catalogue) *SMTPSender {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPSender{from: from, prompts: catalogue, send: dialer.DialAndSend}
}

func (s *SMTPSender) Send(ctx context.Context, to, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := s.prompts.MailBody(code)
	if err != nil {
		return err
	}
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", s.prompts.MailSubject)
	m.SetBody("text/plain", body)

	if err := s.send(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
