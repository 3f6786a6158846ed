// Package money holds currency amounts as fixed-point cents so that cart
// totals never accumulate floating-point drift.
package money

import "fmt"

// Cents is an amount in hundredths of the currency unit.
type Cents int64

// FromFloat converts a decimal amount (e.g. 19.99) to Cents, rounding to the
// nearest cent.
func FromFloat(v float64) Cents {
	if v < 0 {
		return Cents(v*100 - 0.5)
	}
	return Cents(v*100 + 0.5)
}

// Float64 is the decimal representation for JSON consumers that expect one.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

// Mul scales an amount by a quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

func (c Cents) String() string {
	v := c
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
