// Package auth implements bearer-key authentication for the HTTP
// surface: key generation, the on-disk keyring, and request
// verification. Raw keys are shown once at creation and only their
// SHA-256 digests are ever stored.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
)

// KeyPrefix starts every issued key. The full format is the prefix
// followed by 32 lowercase hex characters (128 bits of entropy).
const KeyPrefix = "cca_"

var keyRe = regexp.MustCompile(`^cca_[0-9a-f]{32}$`)

// GenerateKey mints a new bearer key.
func GenerateKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}

	return KeyPrefix + hex.EncodeToString(buf), nil
}

// HashKey returns the hex SHA-256 digest under which a key is stored.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ValidKeyFormat reports whether key is shaped like an issued key.
func ValidKeyFormat(key string) bool {
	return keyRe.MatchString(key)
}
