package notify

import (
	"context"

	"github.com/mukimuddin/deadbox/internal/logging"
)

// LogSender replaces SMTP in development: messages are logged, not sent.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "notify")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "email not sent, smtp disabled", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}
