// Package mailer delivers transactional mail (verification codes,
// password reset links). Delivery failures are reported as ErrDelivery so
// callers can tell them apart from ledger errors.
package mailer

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// ErrDelivery wraps any failure to hand a message to the mail transport.
var ErrDelivery = errors.New("mail delivery failed")

// Mailer defines the interface for outbound mail delivery.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(host string, port int, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from}
}

// Send delivers a plain-text message to a single recipient.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(addr, auth, m.user, []string{to}, []byte(msg)); err != nil {
		log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("Failed to send email")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	return nil
}

// LogMailer writes messages to the application log instead of sending
// them. Used in development and tests when no SMTP relay is configured.
type LogMailer struct{}

// NewLogMailer creates a new LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// Send logs the message and always succeeds.
func (m *LogMailer) Send(to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("Mail (log-only delivery)")
	return nil
}
