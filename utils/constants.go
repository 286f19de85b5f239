package utils

import "math"

// currencyExponents maps supported ISO 4217 currency codes to their minor
// unit exponent. Currencies absent from this table are unsupported.
var currencyExponents = map[string]int{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"KES": 2,
	"CAD": 2,
	"AUD": 2,
	"JPY": 0,
}

// SupportedCurrency reports whether amounts in the given currency can be
// priced and settled.
func SupportedCurrency(code string) bool {
	_, ok := currencyExponents[code]
	return ok
}

// RoundToMinorUnit rounds an amount to the currency's minor unit
// (cents for USD, whole units for JPY).
func RoundToMinorUnit(amount float64, currency string) float64 {
	factor := minorUnitFactor(currency)
	return math.Round(amount*factor) / factor
}

// MinorUnits converts a decimal amount to the integer minor units payment
// gateways settle in.
func MinorUnits(amount float64, currency string) int64 {
	return int64(math.Round(amount * minorUnitFactor(currency)))
}

func minorUnitFactor(currency string) float64 {
	exp, ok := currencyExponents[currency]
	if !ok {
		exp = 2
	}
	return math.Pow(10, float64(exp))
}
