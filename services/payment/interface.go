package payment

import "context"

// InitiateRequest asks the gateway to start capturing a booking's total.
// BookingID travels as metadata so the asynchronous outcome webhook can be
// correlated back to the booking.
type InitiateRequest struct {
	BookingID string
	UserID    string
	Amount    float64
	Currency  string
	Method    string
}

// Gateway is the external payment collaborator. Initiate returns a payment
// reference immediately; the outcome arrives asynchronously via the payment
// webhook and is applied through the booking ledger.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (string, error)
}
