package sms

import (
	"context"
	"log/slog"
)

// LogSender logs messages instead of sending them.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs the recipient and message at Info level.
func (s LogSender) Send(ctx context.Context, message, to string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "sms not delivered, logging only", "to", to, "message", message)
	return nil
}
