// Package utils provides small helpers shared across the authorization
// server: opaque value generation and scope set handling.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAuthorizationCode returns a 32-character hex string backed by
// 128 bits of cryptographic randomness, used as the opaque authorization
// code value.
func GenerateAuthorizationCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GenerateOpaqueID returns a 48-character hex string used for pending
// authorization request identifiers.
func GenerateOpaqueID() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
