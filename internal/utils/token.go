package utils // package utils provides helpers for credentials, codes and receipts

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// SessionTokenBytes is the amount of randomness behind a session token.
// 32 bytes encode to 43 URL-safe characters.
const SessionTokenBytes = 32

// NewSessionToken returns an opaque, URL-safe bearer token.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// NewTransactionCode returns "TXN-" followed by 16 upper-case hex digits.
func NewTransactionCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate transaction code: %w", err)
	}
	return "TXN-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
