// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package normalize canonicalizes free-text names before they are used as
// lookup keys for topics, organizations and locations.
//
// # Usage
//
// "Fierté  Montréal " and "Fierté Montréal" must resolve to the same
// organization row. Both the API and the CSV importer run names through [Name]
// before any find-or-create.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Name converts s into its stored form.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes "e" + combining acute into "é").
// 2. Replaces every run of Unicode whitespace by a single space.
// 3. Trims leading and trailing whitespace.
//
// Case is preserved; uniqueness checks use [Key].
func Name(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Key returns the case-insensitive comparison key of a name.
func Key(s string) string {
	return strings.ToLower(Name(s))
}

// Location splits a "City, Province" label into its normalized parts.
// The second return value is empty when the label has no comma.
func Location(label string) (city, province string) {
	city, province, _ = strings.Cut(label, ",")
	return Name(city), Name(province)
}
