package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateState returns a random hex string used as the OAuth state parameter.
func GenerateState() (string, error) {
	bytes := make([]byte, 16) // 16 bytes will result in 32 hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating oauth state: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
