package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MaxAmount is the largest value the NUMERIC(14,2) amount columns hold.
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Exponent bounds checked before rounding, so a value like 1e2000000 is
// refused without being expanded.
const (
	maxAmountExp = 12
	minAmountExp = -32
)

// RoundAmount rounds d to cents and reports whether the result fits an
// amount column.
func RoundAmount(d decimal.Decimal) (decimal.Decimal, bool) {
	if d.IsZero() {
		return decimal.Zero, true
	}
	if exp := d.Exponent(); exp > maxAmountExp || exp < minAmountExp {
		return decimal.Zero, false
	}
	rounded := d.Round(2)
	if rounded.Abs().GreaterThan(MaxAmount) {
		return decimal.Zero, false
	}
	return rounded, true
}
