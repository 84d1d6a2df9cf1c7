// Package money provides the cent-precision primitives shared by every
// pricing computation. This is part of the platform layer and contains no
// business logic.
package money

import "github.com/shopspring/decimal"

// Zero is the zero amount.
var Zero = decimal.Zero

var hundred = decimal.NewFromInt(100)

// Round2 rounds to 2 decimal places, ties away from zero.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// Percent returns v * pct / 100.
func Percent(v, pct decimal.Decimal) decimal.Decimal {
	return v.Mul(pct).Div(hundred)
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
