// Package notify emails the site owner when a contact message arrives.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends a plain-text email per stored contact message.
type Mailer struct {
	cfg  config.SMTP
	send SendFunc
}

// NewMailer returns nil when SMTP is not configured, so callers can skip
// notifications entirely.
func NewMailer(cfg config.SMTP) *Mailer {
	if !cfg.Enabled() {
		return nil
	}
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// Notify implements contact.Notifier. smtp.SendMail has no context support,
// so ctx is only checked before dialing.
func (m *Mailer) Notify(ctx context.Context, msg contact.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := m.send(addr, auth, m.cfg.User, []string{m.cfg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}

func (m *Mailer) compose(msg contact.Message) []byte {
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Subject: %s
Received: %s
Message:
%s

---
Sent from your portfolio contact form
`, msg.Name, msg.Email, msg.Subject, msg.CreatedAt.Format("2006-01-02 15:04 MST"), msg.Message)

	headers := []string{
		"To: " + m.cfg.To,
		"Subject: " + headerSafe(fmt.Sprintf("Portfolio Contact: %s", msg.Subject)),
		"From: " + m.cfg.User,
		"Reply-To: " + headerSafe(msg.Email),
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n")
}

// headerSafe drops line breaks so submitted values cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
