package models

import "time"

// Price type determines how quantity is derived when pricing a cart line.
const (
	PricePerPerson = "per_person"
	PricePerGroup  = "per_group"
	PricePerNight  = "per_night"
	PricePerHour   = "per_hour"
	PriceFixed     = "fixed"
)

// Discount types, applied in this order regardless of declaration order.
const (
	DiscountEarlyBird = "early_bird"
	DiscountGroup     = "group"
	DiscountSeasonal  = "seasonal"
	DiscountLoyalty   = "loyalty"
)

// Service is the catalog entry a booking is made against. Owned by the
// catalog subsystem; the booking core only reads it.
type Service struct {
	ID               string         `bson:"id" json:"id"`
	ProviderID       string         `bson:"provider_id" json:"providerId"`
	Name             string         `bson:"name" json:"name"`
	Active           bool           `bson:"active" json:"active"`
	BasePrice        float64        `bson:"base_price" json:"basePrice"`
	Currency         string         `bson:"currency" json:"currency"`
	PriceType        string         `bson:"price_type" json:"priceType"`
	CapacityPerSlot  int            `bson:"capacity_per_slot" json:"capacityPerSlot"`
	BlackoutDates    []string       `bson:"blackout_dates,omitempty" json:"blackoutDates,omitempty"` // YYYY-MM-DD
	MinBookingNotice time.Duration  `bson:"min_booking_notice" json:"minBookingNotice"`
	Discounts        []DiscountRule `bson:"discounts,omitempty" json:"discounts,omitempty"`
	Taxes            []TaxRule      `bson:"taxes,omitempty" json:"taxes,omitempty"`
	Fees             []FeeRule      `bson:"fees,omitempty" json:"fees,omitempty"`
}

// DiscountRule reduces the running base amount. Either Percent (fraction,
// e.g. 0.10) or Amount is set, not both.
type DiscountRule struct {
	Type        string    `bson:"type" json:"type"`
	Percent     float64   `bson:"percent,omitempty" json:"percent,omitempty"`
	Amount      float64   `bson:"amount,omitempty" json:"amount,omitempty"`
	ValidFrom   time.Time `bson:"valid_from" json:"validFrom"`
	ValidUntil  time.Time `bson:"valid_until" json:"validUntil"`
	MinQuantity int       `bson:"min_quantity,omitempty" json:"minQuantity,omitempty"`
}

// TaxRule is a percentage tax; Rate is a fraction (0.16 for 16%).
// Taxes compound on the running subtotal in declaration order.
type TaxRule struct {
	Name string  `bson:"name" json:"name"`
	Rate float64 `bson:"rate" json:"rate"`
}

// FeeRule is a flat or percentage fee computed on the post-discount amount.
type FeeRule struct {
	Name    string  `bson:"name" json:"name"`
	Amount  float64 `bson:"amount,omitempty" json:"amount,omitempty"`
	Percent float64 `bson:"percent,omitempty" json:"percent,omitempty"`
}

// IsBlackedOut reports whether the given date (YYYY-MM-DD) is blocked for
// this service.
func (s *Service) IsBlackedOut(date string) bool {
	for _, d := range s.BlackoutDates {
		if d == date {
			return true
		}
	}
	return false
}
