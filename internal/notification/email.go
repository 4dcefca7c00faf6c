package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"medibook/config"
)

type EmailSender struct {
	cfg config.SMTPConfig
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (e *EmailSender) Send(_ context.Context, to, subject, body string) error {
	if e.cfg.Host == "" {
		return fmt.Errorf("SMTP не настроен")
	}

	msg := strings.Join([]string{
		"From: " + e.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := e.cfg.Host + ":" + e.cfg.Port
	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)

	if err := smtp.SendMail(addr, auth, e.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("ошибка отправки email: %w", err)
	}

	return nil
}
