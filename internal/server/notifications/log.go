package notifications

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogSender records intents in the log instead of delivering them. Params are
// left out because they embed raw token secrets.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, intent Intent) error {
	s.logger.Info(ctx, "notification not delivered, no queue configured",
		"recipient", intent.Recipient, "template", intent.Template)
	return nil
}
