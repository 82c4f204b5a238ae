package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// GenerateAPIKey creates a new key and its hash
// Returns: (realKey, hash)
// Example: ("mu_live_abc123", "a665a4592...")
func GenerateAPIKey() (string, string, error) {
	// 32 random bytes, hex-encoded
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	randomString := hex.EncodeToString(bytes)

	realKey := fmt.Sprintf("mu_live_%s", randomString)

	// Only the SHA256 of the key is ever stored
	hash := sha256.Sum256([]byte(realKey))
	hashedKey := hex.EncodeToString(hash[:])

	return realKey, hashedKey, nil
}

// ValidateKey checks if the user provided key matches the hash
func ValidateKey(providedKey, storedHash string) bool {
	hash := sha256.Sum256([]byte(providedKey))
	computedHash := hex.EncodeToString(hash[:])
	return computedHash == storedHash
}
