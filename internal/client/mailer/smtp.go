// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/vglug/intake-backend/internal/errs"
)

type Mailer struct {
	host string
	port string
	from string
	auth smtp.Auth
}

func New(host, port, username, password, from string) *Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{host: host, port: port, from: from, auth: auth}
}

// Send delivers one plain-text message. Failures are transient from
// the caller's point of view: the message can always be resent.
func (m *Mailer) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return errs.NewExternalServiceError("smtp", "failed to send email", true)
	}
	return nil
}
