package payment

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulatedGateway backs development and tests. It records each initiation
// so tests can assert on what was captured, and never fails.
type SimulatedGateway struct {
	Logger *zap.Logger

	mu       sync.Mutex
	requests []InitiateRequest
}

// NewSimulatedGateway constructs a gateway that accepts everything.
func NewSimulatedGateway(logger *zap.Logger) *SimulatedGateway {
	return &SimulatedGateway{Logger: logger}
}

func (g *SimulatedGateway) Initiate(_ context.Context, req InitiateRequest) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()

	ref := "sim_" + uuid.New().String()
	if g.Logger != nil {
		g.Logger.Info("simulated payment initiated",
			zap.String("bookingId", req.BookingID),
			zap.String("paymentRef", ref))
	}
	return ref, nil
}

// Requests returns a copy of everything initiated so far.
func (g *SimulatedGateway) Requests() []InitiateRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]InitiateRequest, len(g.requests))
	copy(out, g.requests)
	return out
}
