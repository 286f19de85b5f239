package fraud

import "context"

// Decision is the screening verdict.
type Decision string

const (
	Approve Decision = "approve"
	Review  Decision = "review"
	Deny    Decision = "deny"
)

// ScreenRequest carries what the external screener needs about a checkout
// attempt.
type ScreenRequest struct {
	UserID        string  `json:"userId"`
	IP            string  `json:"ip,omitempty"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
}

// Gate screens a checkout attempt before any booking is committed. Deny is a
// hard rejection; Review flags the booking for secondary verification before
// payment capture; Approve passes through.
//
// Implementations must fail open: a transport failure of the external
// service degrades to Approve with a logged warning. That is a deliberate
// policy choice, documented here so it is never mistaken for a bug.
type Gate interface {
	Screen(ctx context.Context, req ScreenRequest) Decision
}

// AlwaysApprove is the dev/test stub.
type AlwaysApprove struct{}

func (AlwaysApprove) Screen(context.Context, ScreenRequest) Decision { return Approve }
