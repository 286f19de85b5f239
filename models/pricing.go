package models

// PricingBreakdown is the authoritative price computation for a booking.
// Invariant: Total = BaseAmount − Σdiscounts + Σtaxes + Σfees, every
// component rounded to the currency's minor unit, Total ≥ 0.
type PricingBreakdown struct {
	BaseAmount float64           `bson:"base_amount" json:"baseAmount"`
	Discounts  []AppliedDiscount `bson:"discounts,omitempty" json:"discounts,omitempty"`
	Taxes      []AppliedTax      `bson:"taxes,omitempty" json:"taxes,omitempty"`
	Fees       []AppliedFee      `bson:"fees,omitempty" json:"fees,omitempty"`
	Total      float64           `bson:"total" json:"total"`
	Currency   string            `bson:"currency" json:"currency"`
}

// AppliedDiscount records one discount actually taken, in application order.
type AppliedDiscount struct {
	Type   string  `bson:"type" json:"type"`
	Amount float64 `bson:"amount" json:"amount"`
}

// AppliedTax records one tax line; Rate is kept for auditability.
type AppliedTax struct {
	Name   string  `bson:"name" json:"name"`
	Rate   float64 `bson:"rate" json:"rate"`
	Amount float64 `bson:"amount" json:"amount"`
}

// AppliedFee records one fee line.
type AppliedFee struct {
	Name   string  `bson:"name" json:"name"`
	Amount float64 `bson:"amount" json:"amount"`
}

// DiscountTotal sums the applied discounts.
func (p PricingBreakdown) DiscountTotal() float64 {
	var sum float64
	for _, d := range p.Discounts {
		sum += d.Amount
	}
	return sum
}

// TaxTotal sums the applied taxes.
func (p PricingBreakdown) TaxTotal() float64 {
	var sum float64
	for _, t := range p.Taxes {
		sum += t.Amount
	}
	return sum
}

// FeeTotal sums the applied fees.
func (p PricingBreakdown) FeeTotal() float64 {
	var sum float64
	for _, f := range p.Fees {
		sum += f.Amount
	}
	return sum
}
