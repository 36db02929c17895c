// Package core holds the ledger domain types and money handling.
//
// Amounts are decimal.Decimal throughout so that repeated additions
// stay exact; floats never enter a calculation.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount token to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs are rejected: commands encode direction (/add vs /sub), not
// the amount itself.
//
// Examples:
//
//	ParseAmount("10.50") -> 10.50, nil
//	ParseAmount("10,50") -> 10.50, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
//	ParseAmount("-5")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatGBP renders an amount with the fixed currency symbol and two
// decimal places used in every user-facing reply.
func FormatGBP(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}
