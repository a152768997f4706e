package mail

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/abhikhya/shopcart/internal/config"
)

// Sender delivers a single plain-text message. A transport failure is
// returned as-is, the caller decides how to surface it.
type Sender interface {
	Send(subject, body, from string, to []string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	port, err := strconv.Atoi(cfg.SMTP_PORT)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", cfg.SMTP_PORT, err)
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTP_HOST, port, cfg.SMTP_USER, cfg.SMTP_PASSWORD),
	}, nil
}

func (s *SMTPSender) Send(subject, body, from string, to []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
