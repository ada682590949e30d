// Package mailer sends application emails over SMTP.
package mailer

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"go-ausbildung-automation/internal/config"
)

// Attachment is one file attached to an outgoing message. Filename is the
// name shown to the recipient, independent of the path on disk.
type Attachment struct {
	Filename string
	Path     string
}

type Message struct {
	From        string
	FromName    string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers a single message and returns its message id.
type Mailer interface {
	Send(msg Message) (string, error)
}

type smtpMailer struct {
	dialer *gomail.Dialer
	host   string
}

func NewSMTPMailer(cfg *config.EmailConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		host:   cfg.SMTPHost,
	}
}

func (m *smtpMailer) Send(msg Message) (string, error) {
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), m.host)

	gm := gomail.NewMessage()
	if msg.FromName != "" {
		gm.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		gm.SetHeader("From", msg.From)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", messageID)
	gm.SetBody("text/html", msg.HTML)
	for _, att := range msg.Attachments {
		gm.Attach(att.Path, gomail.Rename(att.Filename))
	}

	if err := m.dialer.DialAndSend(gm); err != nil {
		return "", fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}
	return messageID, nil
}
