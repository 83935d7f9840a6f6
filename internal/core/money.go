// Package core provides the tracker domain model and its text parsing rules.
//
// This file contains the lenient amount parser used for money entries and the
// helpers that read numbers and months out of free-form user input.
package core

import (
	"strconv"
	"strings"
)

// ParseAmount extracts a number from free-form money text.
//
// Every character other than an ASCII digit, '.' or '-' is dropped and the
// remainder is parsed as a float. The second return value is false when
// nothing usable is left, so callers can skip the entry instead of counting
// it as zero.
//
// Examples:
//   ParseAmount("$45.50 usd") -> 45.5, true
//   ParseAmount("—")          -> 0, false
//   ParseAmount("1.2.3")      -> 0, false
func ParseAmount(text string) (float64, bool) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	switch clean {
	case "", "-", ".", "-.":
		return 0, false
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// SplitShared returns one participant's share of a common amount.
func SplitShared(amount float64) float64 {
	return amount / 2
}

// ParseTaskNumber validates user input for a manual renumber.
func ParseTaskNumber(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.TrimLeft(text, "0123456789") != "" {
		return 0, ErrInvalidNumber
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// MonthOf reads the month from a DD.MM HH:MM timestamp.
// It reports false for anything that does not yield a month in 1..12.
func MonthOf(createdAt string) (int, bool) {
	fields := strings.Fields(createdAt)
	if len(fields) == 0 {
		return 0, false
	}
	parts := strings.Split(fields[0], ".")
	if len(parts) < 2 {
		return 0, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, false
	}
	return month, true
}
