package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roamly/models"
)

var quoteTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedService(base float64, currency string) *models.Service {
	return &models.Service{
		ID:        "svc-1",
		Active:    true,
		BasePrice: base,
		Currency:  currency,
		PriceType: models.PriceFixed,
	}
}

func TestQuoteBreakdown(t *testing.T) {
	svc := fixedService(100, "USD")
	svc.Discounts = []models.DiscountRule{
		{Type: models.DiscountSeasonal, Percent: 0.10},
	}
	svc.Taxes = []models.TaxRule{
		{Name: "VAT", Rate: 0.16},
	}
	svc.Fees = []models.FeeRule{
		{Name: "service", Amount: 5},
	}

	engine := NewEngine()
	got, err := engine.Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)

	assert.Equal(t, 100.0, got.BaseAmount)
	require.Len(t, got.Discounts, 1)
	assert.Equal(t, 10.0, got.Discounts[0].Amount)
	require.Len(t, got.Taxes, 1)
	assert.Equal(t, 14.4, got.Taxes[0].Amount) // 16% of the discounted 90
	require.Len(t, got.Fees, 1)
	assert.Equal(t, 5.0, got.Fees[0].Amount)
	assert.Equal(t, 109.4, got.Total)
	assert.Equal(t, "USD", got.Currency)

	// Same inputs, same breakdown.
	again, err := engine.Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestQuoteDiscountOrder(t *testing.T) {
	// Declared loyalty-first; early_bird must still apply first so the
	// percentage discount sees the reduced running amount.
	svc := fixedService(200, "USD")
	svc.Discounts = []models.DiscountRule{
		{Type: models.DiscountLoyalty, Percent: 0.10},
		{Type: models.DiscountEarlyBird, Amount: 20},
	}

	got, err := NewEngine().Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)

	require.Len(t, got.Discounts, 2)
	assert.Equal(t, models.DiscountEarlyBird, got.Discounts[0].Type)
	assert.Equal(t, 20.0, got.Discounts[0].Amount)
	assert.Equal(t, models.DiscountLoyalty, got.Discounts[1].Type)
	assert.Equal(t, 18.0, got.Discounts[1].Amount) // 10% of 180, not 200
	assert.Equal(t, 162.0, got.Total)
}

func TestQuoteDiscountGates(t *testing.T) {
	tests := []struct {
		name      string
		rule      models.DiscountRule
		line      models.CartLine
		priceType string
		applied   bool
	}{
		{
			name:    "expired window skipped",
			rule:    models.DiscountRule{Type: models.DiscountSeasonal, Percent: 0.5, ValidUntil: quoteTime.Add(-time.Hour)},
			applied: false,
		},
		{
			name:    "future window skipped",
			rule:    models.DiscountRule{Type: models.DiscountSeasonal, Percent: 0.5, ValidFrom: quoteTime.Add(time.Hour)},
			applied: false,
		},
		{
			name:    "open window applies",
			rule:    models.DiscountRule{Type: models.DiscountSeasonal, Percent: 0.5, ValidFrom: quoteTime.Add(-time.Hour), ValidUntil: quoteTime.Add(time.Hour)},
			applied: true,
		},
		{
			name:      "below min quantity skipped",
			rule:      models.DiscountRule{Type: models.DiscountGroup, Percent: 0.2, MinQuantity: 4},
			line:      models.CartLine{Guests: models.GuestCount{Adults: 2}},
			priceType: models.PricePerPerson,
			applied:   false,
		},
		{
			name:      "at min quantity applies",
			rule:      models.DiscountRule{Type: models.DiscountGroup, Percent: 0.2, MinQuantity: 4},
			line:      models.CartLine{Guests: models.GuestCount{Adults: 4}},
			priceType: models.PricePerPerson,
			applied:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := fixedService(100, "USD")
			if tc.priceType != "" {
				svc.PriceType = tc.priceType
			}
			svc.Discounts = []models.DiscountRule{tc.rule}

			got, err := NewEngine().Quote(svc, tc.line, quoteTime)
			require.NoError(t, err)
			if tc.applied {
				assert.NotEmpty(t, got.Discounts)
			} else {
				assert.Empty(t, got.Discounts)
			}
		})
	}
}

func TestQuoteDiscountFloorsAtZero(t *testing.T) {
	svc := fixedService(50, "USD")
	svc.Discounts = []models.DiscountRule{
		{Type: models.DiscountEarlyBird, Amount: 80},
	}

	got, err := NewEngine().Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)
	require.Len(t, got.Discounts, 1)
	assert.Equal(t, 50.0, got.Discounts[0].Amount)
	assert.Equal(t, 0.0, got.Total)
}

func TestQuoteTaxesCompound(t *testing.T) {
	svc := fixedService(100, "USD")
	svc.Taxes = []models.TaxRule{
		{Name: "state", Rate: 0.10},
		{Name: "city", Rate: 0.10},
	}

	got, err := NewEngine().Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)
	require.Len(t, got.Taxes, 2)
	assert.Equal(t, 10.0, got.Taxes[0].Amount)
	assert.Equal(t, 11.0, got.Taxes[1].Amount) // 10% of 110
	assert.Equal(t, 121.0, got.Total)
}

func TestQuoteRoundsPerCurrency(t *testing.T) {
	svc := fixedService(1000, "JPY")
	svc.Discounts = []models.DiscountRule{
		{Type: models.DiscountSeasonal, Percent: 0.333},
	}

	got, err := NewEngine().Quote(svc, models.CartLine{ServiceID: svc.ID}, quoteTime)
	require.NoError(t, err)
	require.Len(t, got.Discounts, 1)
	assert.Equal(t, 333.0, got.Discounts[0].Amount) // whole yen, no minor unit
	assert.Equal(t, 667.0, got.Total)
}

func TestQuoteRejectsBadTariffs(t *testing.T) {
	tests := []struct {
		name string
		svc  *models.Service
		code string
	}{
		{"negative base price", fixedService(-10, "USD"), CodeNegativeBasePrice},
		{"unsupported currency", fixedService(100, "XAU"), CodeUnsupportedCurrency},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEngine().Quote(tc.svc, models.CartLine{}, quoteTime)
			require.Error(t, err)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.code, perr.Code)
		})
	}
}

func TestQuantity(t *testing.T) {
	start := time.Date(2026, 7, 10, 14, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		priceType string
		line      models.CartLine
		want      int
	}{
		{"per person counts all brackets", models.PricePerPerson, models.CartLine{Guests: models.GuestCount{Adults: 2, Children: 1, Infants: 1}}, 4},
		{"per night counts whole nights", models.PricePerNight, models.CartLine{StartDate: start, EndDate: start.AddDate(0, 0, 3)}, 3},
		{"per night minimum one", models.PricePerNight, models.CartLine{StartDate: start, EndDate: start.Add(2 * time.Hour)}, 1},
		{"per hour rounds up", models.PricePerHour, models.CartLine{StartDate: start, EndDate: start.Add(90 * time.Minute)}, 2},
		{"per group is one", models.PricePerGroup, models.CartLine{Guests: models.GuestCount{Adults: 6}}, 1},
		{"fixed is one", models.PriceFixed, models.CartLine{Quantity: 5}, 1},
		{"unknown type falls back to quantity", "per_unit", models.CartLine{Quantity: 3}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Quantity(tc.priceType, tc.line))
		})
	}
}
