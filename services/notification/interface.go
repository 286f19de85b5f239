package notification

import (
	"context"

	"go.uber.org/zap"
)

// Service is the external notification dispatcher the core hands events to.
// Delivery is fire-and-forget: the booking core never waits on it, and a
// delivery failure never affects a booking.
type Service interface {
	Notify(ctx context.Context, userID, event string, data map[string]string)
}

// Dispatcher is the default implementation: it detaches delivery onto a
// goroutine and reports failures to the log only.
type Dispatcher struct {
	Logger *zap.Logger
	Sender Sender
}

// Sender is the transport seam (push, email, webhook). Wire a real one in
// main; the LogSender below is the development default.
type Sender interface {
	Send(ctx context.Context, userID, event string, data map[string]string) error
}

// NewDispatcher constructs a dispatcher over the given sender.
func NewDispatcher(logger *zap.Logger, sender Sender) *Dispatcher {
	return &Dispatcher{Logger: logger, Sender: sender}
}

func (d *Dispatcher) Notify(_ context.Context, userID, event string, data map[string]string) {
	go func() {
		// Detached from the caller's context on purpose: the request that
		// triggered the notification may already be finished.
		if err := d.Sender.Send(context.Background(), userID, event, data); err != nil {
			d.Logger.Warn("notification delivery failed",
				zap.String("userId", userID),
				zap.String("event", event),
				zap.Error(err))
		}
	}()
}

// LogSender records the notification in the log instead of delivering it.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) Send(_ context.Context, userID, event string, data map[string]string) error {
	s.Logger.Info("notification",
		zap.String("userId", userID),
		zap.String("event", event),
		zap.Any("data", data))
	return nil
}
