package utils

import (
	"crypto/rand"  // Cryptographic randomness
	"encoding/hex" // Hex encoding
)

// randomHex returns n random bytes as a lowercase hex string
func randomHex(n int) string {
	b := make([]byte, n) // Buffer for random bytes
	_, _ = rand.Read(b)  // crypto/rand.Read never fails on supported platforms
	return hex.EncodeToString(b)
}

// NewRecipientID generates a 12-character inbox link id
func NewRecipientID() string {
	return randomHex(6)
}

// NewReferralCode generates an 8-character invite code
func NewReferralCode() string {
	return randomHex(4)
}

// NewLegacyToken generates a 48-character legacy auth token
func NewLegacyToken() string {
	return randomHex(24)
}
