// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package convert provides forgiving conversions for form and query input.

Archive forms send ids and flags as strings, and a blank or malformed value has
to mean "not provided" rather than an error. The helpers here encode those rules
once so every handler coerces the same way.
*/
package convert

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ToIntD converts a string to an int, returning the provided default if parsing fails or string is empty.
func ToIntD(str string, def int) int {
	str = strings.TrimSpace(str)

	// If the string is empty, return the default value
	if str == "" {
		return def
	}

	// Try to parse the string as an integer
	if v, err := strconv.Atoi(str); err == nil {
		return v
	}

	// If parsing fails, return the default value
	return def
}

// ToOptionalInt returns nil for blank or unparseable input, otherwise a pointer to the value.
//
// Example:
//
//	ToOptionalInt("")    // nil
//	ToOptionalInt("abc") // nil
//	ToOptionalInt(" 4 ") // &4
func ToOptionalInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// ToOptionalString returns nil when the trimmed value is empty.
func ToOptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ToFlag reports whether a checkbox-style value is set. Only "true", "on" and
// "1" (any case) count as set; everything else, including "yes", is false.
func ToFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

// ToOptionalBool parses a boolean filter. Blank or invalid input means "no filter".
func ToOptionalBool(s string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

// ToDate parses an ISO or free-form date ("1981-06-28", "June 28, 1981") into a
// UTC calendar date. Blank input yields nil without error.
func ToDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, err
	}

	day := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}
