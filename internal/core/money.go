// Package core provides the expense domain types and the rules shared by
// every front end.
//
// This file contains the amount parsing and display helpers.
package core

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimals amounts are shown with.
const DisplayPlaces = 2

// ParseAmount converts user input into a decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Sign is
// not restricted. The magnitude must fit the REAL column: values that would
// overflow to infinity or underflow to zero are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-3")    -> -3, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("1e400") -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || (f == 0 && !d.IsZero()) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders d the way every front end displays money.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(DisplayPlaces)
}

// ErrNonFiniteAmount is returned for stored REALs that are not a number.
var ErrNonFiniteAmount = errors.New("stored amount is not finite")

// AmountFromFloat converts a stored REAL back into a decimal using the
// shortest representation that round-trips.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrNonFiniteAmount, f)
	}
	return decimal.NewFromFloat(f), nil
}
