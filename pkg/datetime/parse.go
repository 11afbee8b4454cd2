// Package datetime provides month utility functions for regulation dates.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-desk/pkg/constants"
)

const (
	// MonthLayout is the format expected in reference data and is also the
	// output month format.
	MonthLayout = constants.MonthLayout
)

// ParseMonth parses a "YYYY-MM" month.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", month, err)
	}
	return t, nil
}

// MustParseMonth parses a month and panics on error.
// This is intended for use in tests where the month string is known to be valid.
func MustParseMonth(month string) time.Time {
	t, err := ParseMonth(month)
	if err != nil {
		panic(err)
	}
	return t
}

// MonthsBetween returns the number of whole calendar months from start to
// end. It is negative when end is before start.
func MonthsBetween(start, end time.Time) int {
	return (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
}
