// Package core holds the ledger records, their validation rules and the
// immutable snapshot that every view is computed from.
//
// This file contains amount parsing.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a signed amount.
//
// It accepts an optional leading sign, digits and a single decimal separator
// (dot or comma). Zero is rejected with ErrZeroAmount, anything else that is
// not a number with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("-12,5")  -> -12.5, nil
//	ParseAmount("0")      -> 0, ErrZeroAmount
//	ParseAmount("1.2.3")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 || body == "" || body == "." {
		return 0, ErrInvalidAmount
	}
	if strings.Count(body, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range body {
		if (r < '0' || r > '9') && r != '.' {
			return 0, ErrInvalidAmount
		}
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsZero() {
		return 0, ErrZeroAmount
	}
	return d.InexactFloat64(), nil
}
