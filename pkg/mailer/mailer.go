// Package mailer sends notification emails over SMTP with PLAIN auth.
package mailer

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// Config holds the SMTP server settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends emails through a single SMTP server.
type Mailer struct {
	cfg  Config
	send sendFunc
}

// New validates cfg and returns a Mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, errors.New("SMTP host and port must be provided")
	}
	if cfg.Sender == "" {
		return nil, errors.New("sender email address cannot be empty")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("SMTP username and password must be provided")
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}, nil
}

// SendEmail sends body to recipient. Bodies containing <html> or <p> are sent as HTML.
func (m *Mailer) SendEmail(recipient, subject, body string) error {
	if recipient == "" {
		return errors.New("recipient email address cannot be empty")
	}
	if subject == "" {
		return errors.New("email subject cannot be empty")
	}

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.Sender, []string{recipient}, buildMessage(m.cfg.Sender, recipient, subject, body)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(sender, recipient, subject, body string) []byte {
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
