// Package notifications carries outbound messages produced by the auth
// service. The service only emits an Intent; a Sender accepts it without
// waiting for delivery, and a Deliverer (the SMTP mailer) turns it into mail.
package notifications

import "context"

// Template ids understood by the mailer.
const (
	TemplateEmailVerification = "email_verification"
	TemplateResetPassword     = "reset_password"
)

// Intent is a request to notify Recipient using Template rendered with Params.
type Intent struct {
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params"`
}

// Sender accepts intents for later delivery.
type Sender interface {
	Send(ctx context.Context, intent Intent) error
}

// Deliverer performs the actual delivery of one intent.
type Deliverer interface {
	Deliver(ctx context.Context, intent Intent) error
}
