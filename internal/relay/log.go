package relay

import (
	"context"

	"go.uber.org/zap"
)

// Log accepts every message and only writes it to the log. Useful while
// developing without provider credentials.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Send(_ context.Context, msg Message) error {
	l.logger.Info("contact message (log relay)",
		zap.String("from_name", msg.Name),
		zap.String("from_email", msg.Email),
		zap.Int("message_len", len(msg.Message)))
	return nil
}
