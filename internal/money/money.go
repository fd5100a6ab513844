// Package money converts between decimal major-unit prices and integer minor units.
package money

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency is the single currency the storefront prices in.
const Currency = "MAD"

var hundred = decimal.NewFromInt(100)

// ToMinor converts a major-unit amount to minor units, rounding half away from zero.
func ToMinor(major decimal.Decimal) int64 {
	return major.Mul(hundred).Round(0).IntPart()
}

// FromMinor converts minor units back to a major-unit decimal.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseMajor parses a textual major-unit amount such as "129.99".
func ParseMajor(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("parse amount %q: negative", s)
	}
	return d, nil
}

// Format renders minor units as "1234.50 MAD".
func Format(minor int64) string {
	return FromMinor(minor).StringFixed(2) + " " + Currency
}

// Mul returns amount*n, or false when the product does not fit in an int64.
func Mul(amount, n int64) (int64, bool) {
	if amount == 0 || n == 0 {
		return 0, true
	}
	if (amount == -1 && n == math.MinInt64) || (n == -1 && amount == math.MinInt64) {
		return 0, false
	}
	r := amount * n
	if r/n != amount {
		return 0, false
	}
	return r, true
}

// Add returns a+b, or false on overflow.
func Add(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
