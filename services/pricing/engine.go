package pricing

import (
	"math"
	"time"

	"roamly/models"
	"roamly/utils"
)

// discountOrder is the fixed application order, independent of how the
// catalog declares the rules.
var discountOrder = []string{
	models.DiscountEarlyBird,
	models.DiscountGroup,
	models.DiscountSeasonal,
	models.DiscountLoyalty,
}

// Engine computes authoritative price breakdowns. It is pure and
// deterministic: identical inputs always yield an identical breakdown, which
// is what makes retries idempotent and breakdowns auditable.
type Engine struct{}

// NewEngine constructs a pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Quote prices one cart line against a service tariff at the given instant.
func (e *Engine) Quote(svc *models.Service, line models.CartLine, now time.Time) (models.PricingBreakdown, error) {
	var breakdown models.PricingBreakdown

	if svc.BasePrice < 0 {
		return breakdown, newError(CodeNegativeBasePrice, "service %s has negative base price %.2f", svc.ID, svc.BasePrice)
	}
	if !utils.SupportedCurrency(svc.Currency) {
		return breakdown, newError(CodeUnsupportedCurrency, "service %s priced in unsupported currency %q", svc.ID, svc.Currency)
	}

	qty := Quantity(svc.PriceType, line)
	if qty <= 0 {
		return breakdown, newError(CodeInvalidQuantity, "derived quantity %d for price type %s", qty, svc.PriceType)
	}

	currency := svc.Currency
	base := utils.RoundToMinorUnit(svc.BasePrice*float64(qty), currency)
	running := base

	breakdown = models.PricingBreakdown{
		BaseAmount: base,
		Currency:   currency,
	}

	// Discounts in fixed type order; declaration order within a type.
	for _, dtype := range discountOrder {
		for _, rule := range svc.Discounts {
			if rule.Type != dtype {
				continue
			}
			if !windowContains(rule.ValidFrom, rule.ValidUntil, now) {
				continue
			}
			if rule.MinQuantity > 0 && qty < rule.MinQuantity {
				continue
			}
			amount := rule.Amount
			if rule.Percent > 0 {
				amount = running * rule.Percent
			}
			// A discount reduces the running base, never below zero.
			amount = math.Min(amount, running)
			amount = utils.RoundToMinorUnit(amount, currency)
			if amount <= 0 {
				continue
			}
			running -= amount
			breakdown.Discounts = append(breakdown.Discounts, models.AppliedDiscount{
				Type:   dtype,
				Amount: amount,
			})
		}
	}

	discounted := running

	// Percentage taxes compound on the running subtotal, in declaration order.
	for _, rule := range svc.Taxes {
		amount := utils.RoundToMinorUnit(running*rule.Rate, currency)
		running += amount
		breakdown.Taxes = append(breakdown.Taxes, models.AppliedTax{
			Name:   rule.Name,
			Rate:   rule.Rate,
			Amount: amount,
		})
	}

	// Fees are computed on the post-discount amount, in declaration order.
	for _, rule := range svc.Fees {
		amount := rule.Amount
		if rule.Percent > 0 {
			amount += discounted * rule.Percent
		}
		amount = utils.RoundToMinorUnit(amount, currency)
		breakdown.Fees = append(breakdown.Fees, models.AppliedFee{
			Name:   rule.Name,
			Amount: amount,
		})
	}

	breakdown.Total = utils.RoundToMinorUnit(
		breakdown.BaseAmount-breakdown.DiscountTotal()+breakdown.TaxTotal()+breakdown.FeeTotal(),
		currency,
	)
	if breakdown.Total < 0 {
		return models.PricingBreakdown{}, newError(CodeNegativeTotal, "computed total %.2f for service %s", breakdown.Total, svc.ID)
	}
	return breakdown, nil
}

// Quantity derives the billable quantity from the price type.
func Quantity(priceType string, line models.CartLine) int {
	switch priceType {
	case models.PricePerPerson:
		return line.Guests.Total()
	case models.PricePerNight:
		return Nights(line.StartDate, line.EndDate)
	case models.PricePerHour:
		hours := int(math.Ceil(line.EndDate.Sub(line.StartDate).Hours()))
		if hours < 1 {
			hours = 1
		}
		return hours
	case models.PricePerGroup, models.PriceFixed:
		return 1
	default:
		if line.Quantity > 0 {
			return line.Quantity
		}
		return 1
	}
}

// Nights counts whole nights between two dates, minimum one.
func Nights(start, end time.Time) int {
	nights := int(end.Sub(start).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}

func windowContains(from, until, now time.Time) bool {
	if !from.IsZero() && now.Before(from) {
		return false
	}
	if !until.IsZero() && now.After(until) {
		return false
	}
	return true
}
