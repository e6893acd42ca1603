package notification

import (
	"context"
	"log/slog"
)

// Channel identifies how a message reaches the user.
type Channel string

const (
	// ChannelSMS delivers to the user's phone number.
	ChannelSMS Channel = "sms"
	// ChannelEmail delivers to the user's email address.
	ChannelEmail Channel = "email"
)

// Message describes an outbound notification.
type Message struct {
	Channel     Channel
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream gateways. Ordinary delivery
// failures come back as errors, never panics; callers decide how to react.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the
// logger. Used in dev mode and tests.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"channel", string(message.Channel),
		"destination", message.Destination,
		"body", message.Body,
	)
	return nil
}
