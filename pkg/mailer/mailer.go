// Package mailer sends e-mail over SMTP with PLAIN authentication.
// Any SMTP relay works; Mailtrap (smtp.mailtrap.io:2525) is convenient in development.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends messages through one SMTP relay.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// New returns a Mailer for cfg. Host, User, Pass and From are required.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host must be provided")
	}
	if cfg.User == "" || cfg.Pass == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender email address cannot be empty")
	}
	if cfg.Port == "" {
		cfg.Port = "587"
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// Send delivers one message to recipient. The body is sent as HTML when it
// contains an <html> or <p> tag, as plain text otherwise.
func (m *Mailer) Send(recipient, subject, body string) error {
	if recipient == "" {
		return fmt.Errorf("recipient email address cannot be empty")
	}
	if subject == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.From, []string{recipient}, buildMessage(recipient, m.cfg.From, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(recipient, sender, subject, body string) []byte {
	contentType := "text/plain; charset=UTF-8"
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<html>") || strings.Contains(lower, "<p>") {
		contentType = "text/html; charset=UTF-8"
	}

	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s\r\n"+
		"\r\n"+
		"%s\r\n", recipient, sender, subject, contentType, body))
}
