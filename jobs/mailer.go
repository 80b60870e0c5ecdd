package jobs

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers transactional mail produced by background jobs.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer talks plain SMTP, matching the Mailpit container used in
// development.
type SMTPMailer struct {
	Addr string
	From string
}

// NewSMTPMailer constructs an SMTP mailer.
func NewSMTPMailer(host string, port int, from string) *SMTPMailer {
	return &SMTPMailer{Addr: fmt.Sprintf("%s:%d", host, port), From: from}
}

// Send delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg))
}
