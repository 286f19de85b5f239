package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types published by the booking core.
const (
	TypeBookingCreated     = "booking.created"
	TypeBookingConfirmed   = "booking.confirmed"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingCompleted   = "booking.completed"
	TypeBookingNoShow      = "booking.no_show"
	TypePaymentFailed      = "payment.failed"
	TypeInvariantViolation = "ops.invariant_violation"
)

// Event is the outbound payload the core publishes at lifecycle points. The
// channel is explicit and transport-agnostic: subscribers decide how events
// reach sockets, queues or dashboards.
type Event struct {
	Type      string            `json:"type"`
	BookingID string            `json:"bookingId,omitempty"`
	At        time.Time         `json:"at"`
	Data      map[string]string `json:"data,omitempty"`
}

// Publisher is the outbound event channel.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// ChannelPublisher fans events out to subscriber channels. Slow subscribers
// drop events rather than block the core.
type ChannelPublisher struct {
	Logger *zap.Logger

	mu   sync.RWMutex
	subs []chan Event
}

// NewChannelPublisher constructs an empty publisher.
func NewChannelPublisher(logger *zap.Logger) *ChannelPublisher {
	return &ChannelPublisher{Logger: logger}
}

// Subscribe returns a buffered channel receiving all future events.
func (p *ChannelPublisher) Subscribe() <-chan Event {
	ch := make(chan Event, 64)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

func (p *ChannelPublisher) Publish(_ context.Context, event Event) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, ch := range p.subs {
		select {
		case ch <- event:
		default:
			p.Logger.Warn("dropping event for slow subscriber",
				zap.String("type", event.Type),
				zap.String("bookingId", event.BookingID))
		}
	}
}

// Nop discards all events; used in tests.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
