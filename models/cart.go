package models

import "time"

// GuestCount breaks participants down by age bracket.
type GuestCount struct {
	Adults   int `bson:"adults" json:"adults"`
	Children int `bson:"children" json:"children"`
	Infants  int `bson:"infants" json:"infants"`
}

// Total returns the full participant count.
func (g GuestCount) Total() int {
	return g.Adults + g.Children + g.Infants
}

// CartLine is one selected service with its requested dates and party.
// Transient: owned by the requesting session until checkout.
type CartLine struct {
	ServiceID       string     `json:"serviceId"`
	Quantity        int        `json:"quantity"`
	Guests          GuestCount `json:"guests"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	SpecialRequests string     `json:"specialRequests,omitempty"`
}

// Cart is the user's selection submitted to checkout.
type Cart struct {
	UserID string     `json:"userId"`
	Lines  []CartLine `json:"lines"`
}

// ContactInfo travels with a booking request so the provider can reach the
// guest without a user-service round trip.
type ContactInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// BookingRequest is the unit of work checkout derives from a cart: one per
// distinct (service, date range) group.
type BookingRequest struct {
	UserID          string      `json:"userId"`
	ServiceID       string      `json:"serviceId"`
	ProviderID      string      `json:"providerId"`
	Units           int         `json:"units"`
	Guests          GuestCount  `json:"guests"`
	StartDate       time.Time   `json:"startDate"`
	EndDate         time.Time   `json:"endDate"`
	SlotKey         string      `json:"slotKey"`
	SpecialRequests string      `json:"specialRequests,omitempty"`
	Contact         ContactInfo `json:"contact"`
	PaymentMethod   string      `json:"paymentMethod"`
	Pricing         PricingBreakdown
	ReservationID   string
	FraudFlag       string
}

// BookingConfirmation is the immediate checkout response; payment completes
// asynchronously.
type BookingConfirmation struct {
	BookingIDs []string `json:"bookingIds"`
	Status     string   `json:"status"`
}
