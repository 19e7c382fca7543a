package mailer

import (
	"testing"

	gomail "gopkg.in/gomail.v2"

	"github.com/mealbridge/mealbridge-backend/pkg/config"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (c *captureDialer) DialAndSend(msgs ...*gomail.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msgs...)
	return nil
}

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:       "smtp.example.com",
		Port:       587,
		Email:      "noreply@example.com",
		Password:   "secret",
		SenderName: "MealBridge",
	}
}

func TestNewValidation(t *testing.T) {
	cfg := testSMTPConfig()
	cfg.Host = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing host")
	}

	cfg = testSMTPConfig()
	cfg.Email = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing sender email")
	}
}

func TestSendSetsHeaders(t *testing.T) {
	dialer := &captureDialer{}
	sender := &SMTP{cfg: testSMTPConfig(), dialer: dialer}

	err := sender.Send(Message{
		To:      "ngo@example.org",
		Subject: "Food available nearby",
		HTML:    "<p>2kg rice</p>",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(dialer.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(dialer.sent))
	}
	msg := dialer.sent[0]
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ngo@example.org" {
		t.Fatalf("unexpected To header %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Food available nearby" {
		t.Fatalf("unexpected Subject header %v", got)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	sender := &SMTP{cfg: testSMTPConfig(), dialer: &captureDialer{}}
	if err := sender.Send(Message{Subject: "x"}); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
