// Package random provides cryptographic credential generation helpers.
package random

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewToken generates an opaque credential of size random bytes, hex encoded.
// Session keys and combo tokens are opaque values in the client protocol, so
// no structure beyond randomness is added.
func NewToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// NewKeyBlock fills and returns a key block of the requested size.
// Dispatch key and seed material is generated this way when not supplied
// through configuration.
func NewKeyBlock(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("key block size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := crand.Read(buf); err != nil {
		return nil, fmt.Errorf("read key block: %w", err)
	}
	return buf, nil
}
