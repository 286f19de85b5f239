package models

import "time"

// Booking lifecycle statuses. Transitions:
// pending → {confirmed, cancelled}; confirmed → {completed, cancelled, no_show}.
// completed, cancelled and no_show are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Fraud screening flags carried on a booking.
const (
	FraudFlagNone   = ""
	FraudFlagReview = "review"
)

// BookingDetails captures what was booked: dates, party and contact.
type BookingDetails struct {
	StartDate       time.Time   `bson:"start_date" json:"startDate"`
	EndDate         time.Time   `bson:"end_date" json:"endDate"`
	Guests          GuestCount  `bson:"guests" json:"guests"`
	Contact         ContactInfo `bson:"contact" json:"contact"`
	SpecialRequests string      `bson:"special_requests,omitempty" json:"specialRequests,omitempty"`
}

// CommunicationEntry is one message in a booking's append-only log.
type CommunicationEntry struct {
	At      time.Time `bson:"at" json:"at"`
	Sender  string    `bson:"sender" json:"sender"`
	Message string    `bson:"message" json:"message"`
}

// Review is attachable only after a booking completes.
type Review struct {
	Rating  int       `bson:"rating" json:"rating"`
	Comment string    `bson:"comment,omitempty" json:"comment,omitempty"`
	At      time.Time `bson:"at" json:"at"`
}

// CancellationRecord documents who cancelled, why, and what was refunded.
type CancellationRecord struct {
	Actor        string    `bson:"actor" json:"actor"`
	At           time.Time `bson:"at" json:"at"`
	Reason       string    `bson:"reason" json:"reason"`
	RefundAmount float64   `bson:"refund_amount" json:"refundAmount"`
	RefundStatus string    `bson:"refund_status" json:"refundStatus"`
}

// Booking is the durable reservation record. Created by checkout, mutated
// only through the ledger's transition operations, never deleted.
type Booking struct {
	ID            string               `bson:"id" json:"id"` // sortable by creation time, globally unique
	UserID        string               `bson:"user_id" json:"userId"`
	ServiceID     string               `bson:"service_id" json:"serviceId"`
	ProviderID    string               `bson:"provider_id" json:"providerId"`
	Details       BookingDetails       `bson:"details" json:"details"`
	Pricing       PricingBreakdown     `bson:"pricing" json:"pricing"`
	Payment       PaymentState         `bson:"payment" json:"payment"`
	Status        string               `bson:"status" json:"status"`
	SlotKey       string               `bson:"slot_key" json:"slotKey"`
	Units         int                  `bson:"units" json:"units"`
	ReservationID string               `bson:"reservation_id" json:"reservationId"`
	FraudFlag     string               `bson:"fraud_flag,omitempty" json:"fraudFlag,omitempty"`
	Cancellation  *CancellationRecord  `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	Communication []CommunicationEntry `bson:"communication,omitempty" json:"communication,omitempty"`
	Review        *Review              `bson:"review,omitempty" json:"review,omitempty"`
	Frozen        bool                 `bson:"frozen,omitempty" json:"frozen,omitempty"` // set when an invariant violation is detected; operator-only from then on
	CreatedAt     time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Terminal reports whether no further lifecycle transitions are possible.
func (b *Booking) Terminal() bool {
	switch b.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}
