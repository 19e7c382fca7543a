// Package mailer sends transactional email over SMTP.
package mailer

import (
	"errors"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/mealbridge/mealbridge-backend/pkg/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender dispatches a single message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(msg Message) error
}

type dialer interface {
	DialAndSend(...*gomail.Message) error
}

// SMTP sends mail through a configured SMTP relay via gomail.
type SMTP struct {
	cfg    config.SMTPConfig
	dialer dialer
}

// New builds an SMTP sender from config.
func New(cfg config.SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("smtp sender email is required")
	}
	return &SMTP{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Email, cfg.Password),
	}, nil
}

// Send dispatches one message through the relay.
func (s *SMTP) Send(msg Message) error {
	if msg.To == "" {
		return errors.New("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.SenderName, s.cfg.Email))
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending mail to %s: %w", msg.To, err)
	}
	return nil
}
