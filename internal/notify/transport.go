package notify

import (
	"context"

	"go.uber.org/zap"
)

// Transport delivers one rendered notification to a destination. A non-nil
// error marks the attempt as failed; the outbox worker decides whether to
// retry or give up.
type Transport interface {
	Send(ctx context.Context, destination, content string) error
}

// LogTransport writes deliveries to the log instead of sending them. Used in
// development when no bot token is configured.
type LogTransport struct {
	logger *zap.Logger
}

// NewLogTransport creates the transport.
func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Send logs the message and reports success.
func (t *LogTransport) Send(ctx context.Context, destination, content string) error {
	t.logger.Info("notification (log transport)",
		zap.String("destination", destination),
		zap.String("content", content))
	return nil
}
