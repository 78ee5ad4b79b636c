// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package query parses list-shaped values out of query strings and form fields.
package query

import "strings"

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// UniqueFold splits a comma-separated list like [StringSlice] and drops
// case-insensitive duplicates, keeping the first spelling seen.
//
// Example:
//
//	UniqueFold("Alpha, beta, ALPHA,, Beta ") // ["Alpha", "beta"]
func UniqueFold(val string) []string {
	return DedupeFold(StringSlice(val))
}

// DedupeFold drops blank values and case-insensitive duplicates from vals,
// keeping the first spelling seen. vals is not modified.
func DedupeFold(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(vals))
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup || v == "" {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, v)
	}
	return res
}

// UniqueInts removes duplicate ids while preserving order.
func UniqueInts(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(ids))
	res := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
