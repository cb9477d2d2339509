// Package core provides the ledger domain types and amount parsing.
//
// This file contains the parser used by the command interface to turn
// user-typed amounts into validated float64 values.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Signs, exponents and anything that is not a plain decimal are rejected
// with ErrInvalidAmount, as are zero and values that overflow float64.
//
// Examples:
//   ParseAmount("12.34") -> 12.34, nil
//   ParseAmount("12,5")  -> 12.5, nil
//   ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return 0, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return 0, ErrInvalidAmount
			}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// Cents converts an amount to whole cents, rounding half away from zero.
// Money comparisons go through Cents so that 0.3-0.1 equals 0.2.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// FromCents converts whole cents back to an amount.
func FromCents(c int64) float64 {
	return float64(c) / 100
}
