// Package mathutil provides common mathematical utility functions for
// decimal currency amounts.
package mathutil

import (
	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Round rounds a value to two decimals for display.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(2)
}

// IsPositive checks if a value is strictly greater than zero.
func IsPositive(val decimal.Decimal) bool {
	return val.Sign() > 0
}

// NonNegative clamps negative values to zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.Sign() < 0 {
		return decimal.Zero
	}
	return val
}

// Min returns the minimum of two values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the maximum of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// CalculatePercentage calculates what percentage value is of total.
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).Div(total)
}

// ApplyPercentage applies an integer percentage to a value. Division by one
// hundred is exact in decimal arithmetic.
func ApplyPercentage(value decimal.Decimal, percentage int) decimal.Decimal {
	return value.Mul(decimal.NewFromInt(int64(percentage))).Div(hundred)
}
