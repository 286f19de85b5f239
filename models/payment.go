package models

import "time"

// Payment sub-state statuses. Transitions:
// pending → processing → {completed, failed};
// completed → {refunded, partially_refunded}.
const (
	PaymentPending           = "pending"
	PaymentProcessing        = "processing"
	PaymentCompleted         = "completed"
	PaymentFailed            = "failed"
	PaymentRefunded          = "refunded"
	PaymentPartiallyRefunded = "partially_refunded"
)

// PaymentState is the payment axis embedded in a Booking.
// Invariants: PaidAmount ≤ Pricing.Total; RefundAmount ≤ PaidAmount.
type PaymentState struct {
	Status         string    `bson:"status" json:"status"`
	Method         string    `bson:"method" json:"method"`
	TransactionRef string    `bson:"transaction_ref,omitempty" json:"transactionRef,omitempty"`
	PaidAmount     float64   `bson:"paid_amount" json:"paidAmount"`
	RefundAmount   float64   `bson:"refund_amount" json:"refundAmount"`
	DueDate        time.Time `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Attempts       int       `bson:"attempts" json:"attempts"` // failed capture attempts so far
}

// PaymentOutcome is the gateway's asynchronous result, delivered via the
// payment webhook and correlated by booking id.
type PaymentOutcome struct {
	PaymentRef string  `json:"paymentRef"`
	BookingID  string  `json:"bookingId"`
	Status     string  `json:"status"` // "completed" or "failed"
	PaidAmount float64 `json:"paidAmount"`
}
