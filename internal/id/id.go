// Package id provides utilities for generating unique identifiers.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Generate returns a random 8-character hex session ID.
func Generate() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
