// Package format renders KRW amounts and percentages for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Millions renders an amount held in millions of KRW, e.g. "1,234.5M KRW".
// Trailing fractional zeros are dropped and the value is rounded to two places.
func Millions(amount decimal.Decimal) string {
	return NumericMillions(amount) + "M KRW"
}

// NumericMillions renders an amount in millions of KRW without a unit (e.g. "-1,234.5").
func NumericMillions(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.Sign() < 0 {
		sign = "-"
	}
	return sign + groupDigits(rounded.Abs().String())
}

// Won renders a whole-won amount with a currency sign (e.g. "₩55,000,000").
func Won(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "₩" + groupDigits(decimal.NewFromInt(amount).String())
}

// Percent renders a percentage with at most two decimals (e.g. "45.5%").
func Percent(value decimal.Decimal) string {
	return value.Round(2).String() + "%"
}

func groupDigits(formatted string) string {
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
