// Package core holds the tenant-ledger domain: tenants, monetary amounts,
// lease dates and the pure balance arithmetic. It performs no I/O.
//
// This file contains money parsing and formatting. Amounts are held as
// integer cents; all display formatting is two-decimal.
package core

import (
	"fmt"
	"strings"
	"unicode"
)

// Money is a signed monetary amount in cents. Negative balances mean the
// tenant holds a credit.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string to Money with half-up rounding on
// the third decimal place.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading minus sign. Callers that need a non-negative or
// strictly positive amount check the sign afterwards.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("-5")     -> -500 cents
//	ParseMoney("12.346") -> 1235 cents (rounds up)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, &ValidationError{Field: "amount", Reason: "empty amount"}
	}
	// Normalize decimal comma to dot.
	s = strings.ReplaceAll(s, ",", ".")

	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" || s == "." {
		return Money{}, &ValidationError{Field: "amount", Reason: "malformed amount"}
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("malformed amount %q", s)}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("malformed amount %q", s)}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("malformed amount %q", s)}
		}
	}

	var iv int64
	for _, r := range intPart {
		d := int64(r - '0')
		// Guard against overflow before it happens.
		if iv > ((1<<63-1)-d)/10 {
			return Money{}, &ValidationError{Field: "amount", Reason: "amount too large"}
		}
		iv = iv*10 + d
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, &ValidationError{Field: "amount", Reason: "amount too large"}
	}

	// First two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if negative {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// Add returns m + x.
func (m Money) Add(x Money) Money { return Money{Cents: m.Cents + x.Cents} }

// Sub returns m - x.
func (m Money) Sub(x Money) Money { return Money{Cents: m.Cents - x.Cents} }

// MulInt returns m multiplied by a whole number.
func (m Money) MulInt(n int64) Money { return Money{Cents: m.Cents * n} }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// String formats the amount with two decimals, e.g. "1234.50" or "-0.05".
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
