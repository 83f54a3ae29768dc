package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

const emailSubject = "Alerta de monitoreo - cultivo de frijol"

// EmailNotifier sends the same messages as HTML mail over SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	to     []string
}

func NewEmailNotifier(host string, port int, username, password string, to []string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		to:     to,
	}
}

// Send returns when ctx is done even if the SMTP session hangs. The session
// itself is abandoned and ends when the server drops it.
func (e *EmailNotifier) Send(ctx context.Context, text string) error {
	if e.dialer.Username == "" || len(e.to) == 0 {
		return ErrNotConfigured
	}

	msg := e.message(text)
	errc := make(chan error, 1)
	go func() { errc <- e.dialer.DialAndSend(msg) }()

	select {
	case err := <-errc:
		if err != nil {
			slog.Error("Email delivery failed", "error", err, "recipients", len(e.to))
			return err
		}
	case <-ctx.Done():
		slog.Error("Email delivery abandoned", "error", ctx.Err(), "recipients", len(e.to))
		return fmt.Errorf("email delivery: %w", ctx.Err())
	}
	slog.Info("Email notification sent", "recipients", len(e.to))
	return nil
}

func (e *EmailNotifier) message(text string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.dialer.Username)
	m.SetHeader("To", e.to...)
	m.SetHeader("Subject", emailSubject)
	m.SetBody("text/html", strings.ReplaceAll(text, "\n", "<br>\n"))
	return m
}
