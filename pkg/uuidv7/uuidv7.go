// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

// Package uuidv7 wraps google/uuid to generate time-ordered identifiers.
//
// Request IDs use it so that log lines sort by arrival when grepped by id.
package uuidv7

import "github.com/google/uuid"

// New generates a new UUIDv7 string, or a random UUIDv4 when the entropy
// source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
