package notifications

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	TemplateEmailVerification: "Verify your email address",
	TemplateResetPassword:     "Reset your password",
}

// Dialer is the part of *gomail.Dialer used by Mailer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer renders intents with the embedded HTML templates and sends them over
// SMTP.
type Mailer struct {
	dialer    Dialer
	from      string
	templates *template.Template
}

// NewMailer builds a Mailer around a gomail dialer for host:port.
func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	return newMailer(gomail.NewDialer(host, port, username, password), from)
}

func newMailer(d Dialer, from string) (*Mailer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	return &Mailer{dialer: d, from: from, templates: t}, nil
}

// Deliver sends one intent. Unknown templates are an error.
func (m *Mailer) Deliver(ctx context.Context, intent Intent) error {
	subject, ok := subjects[intent.Template]
	if !ok {
		return fmt.Errorf("unknown email template %q", intent.Template)
	}

	body, err := m.render(intent.Template, intent.Params)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", intent.Recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *Mailer) render(name string, params map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name+".html", params); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
