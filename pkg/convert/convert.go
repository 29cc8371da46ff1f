// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package convert provides quick type-conversion utilities.

It wraps standards like [strconv] to provide fault-tolerant conversions
(e.g., returning 0 instead of an error when string parsing fails). This is
highly useful in API handler contexts parsing query parameters and in
spreadsheet ingestion where cells arrive as free text.

Do not use this package if distinguishing between malformed data and zero values
is important in your domain logic; use explicit standard libraries instead.
*/
package convert

import (
	"strconv"
	"strings"
)

// ToInt converts a string to an integer, silencing parsing errors.
// It returns 0 if the string is empty or cannot be parsed.
func ToInt(s string) int {
	if s == "" {
		return 0
	}
	v, _ := strconv.Atoi(s)
	return v
}

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {
	if str == "" {
		return def
	}
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}
	return def
}

// ToBool parses a boolean string ("true", "1", "false", "0").
// It returns false on empty string or parse error.
func ToBool(s string) bool {
	if s == "" {
		return false
	}
	v, _ := strconv.ParseBool(s)
	return v
}

// ToFloatPtr parses a trimmed string into a *float64.
//
// It returns nil for empty or unparseable input, which lets ingestion
// distinguish "no value" from an actual zero observation.
func ToFloatPtr(s string) *float64 {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return nil
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ToIntPtr parses a trimmed string into a *int, returning nil for empty or
// unparseable input. Used for optional observation years.
func ToIntPtr(s string) *int {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return nil
	}
	v, err := strconv.Atoi(clean)
	if err != nil {
		return nil
	}
	return &v
}
