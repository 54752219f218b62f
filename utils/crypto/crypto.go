package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// TokenByteLength is the entropy of reset/verification tokens in bytes
	TokenByteLength = 32
)

// GenerateToken generates a cryptographically secure, URL-safe opaque token
// for password resets and email verification.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenByteLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
