package common

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex returns the SHA-256 digest of the input encoded as lowercase hex.
func Sha256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Sha1Hex returns the SHA-1 digest of the input encoded as lowercase hex.
// Storage providers still use SHA-1 request signatures.
func Sha1Hex(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short stable digest suitable for correlating a secret
// value in logs without revealing it.
func Fingerprint(input string) string {
	return Sha256Hex(input)[:12]
}
