// Package mailer sends e-ticket mail through an SMTP relay, with a dev-mode
// implementation that only logs.
package mailer

import (
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mailer delivers a message with an optional PDF attachment
type Mailer interface {
	Send(to, subject, htmlBody string, attachment []byte, filename string) error
}

// SMTPMailer sends mail through an SMTP relay
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password, from: from}
}

// Send builds a multipart MIME message and submits it to the relay
func (m *SMTPMailer) Send(to, subject, htmlBody string, attachment []byte, filename string) error {
	const boundary = "fastx-ticket-boundary"

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n")

	if len(attachment) > 0 {
		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: application/pdf\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=%q\r\n\r\n", filename)

		encoded := base64.StdEncoding.EncodeToString(attachment)
		// RFC 2045 line length limit
		for len(encoded) > 76 {
			msg.WriteString(encoded[:76])
			msg.WriteString("\r\n")
			encoded = encoded[76:]
		}
		msg.WriteString(encoded)
		msg.WriteString("\r\n")
	}

	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// DevMailer logs instead of sending; used outside production
type DevMailer struct {
	logger *logrus.Logger
}

// NewDevMailer creates a new DevMailer
func NewDevMailer(logger *logrus.Logger) *DevMailer {
	return &DevMailer{logger: logger}
}

// Send logs the would-be delivery
func (m *DevMailer) Send(to, subject, htmlBody string, attachment []byte, filename string) error {
	m.logger.WithFields(logrus.Fields{
		"to":              to,
		"subject":         subject,
		"attachment":      filename,
		"attachment_size": len(attachment),
	}).Info("Dev mode: mail not sent")
	return nil
}
