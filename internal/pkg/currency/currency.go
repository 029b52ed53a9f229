package currency

import (
	"fmt"
	"math"
)

// USD is the normalization currency. Every running total in the system is
// kept in USD so mixed-currency summation cannot occur.
const USD = "USD"

// ToUSD converts an amount to USD. fxRate is the number of local currency
// units per USD, snapshotted on the application at approval time. USD amounts
// pass through unchanged; any other currency requires a positive rate.
func ToUSD(amount float64, code string, fxRate *float64) (float64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}
	if code == USD {
		return Round(amount), nil
	}
	if fxRate == nil || *fxRate <= 0 {
		return 0, fmt.Errorf("no fx rate available to convert %s to USD", code)
	}
	return Round(amount / *fxRate), nil
}

// Round rounds to cents. Totals are accumulated from rounded terms so the
// running aggregate matches the sum of its parts.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
