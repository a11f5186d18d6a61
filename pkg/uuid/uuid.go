// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package uuid generates the identifiers used for documents and version entries.

Identifiers are UUIDv7: time-ordered, so version history rows sort by creation
and B-tree indexes stay compact.
*/
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string. It panics only if the system entropy
// source fails, which no caller can recover from.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
