// Package secret provides authenticated encryption for credential blobs
// stored at rest. A single master secret is stretched into an AES-256 key;
// every encrypt call draws a fresh nonce, and decryption fails closed so a
// corrupt record degrades to "not configured" instead of breaking a request.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// The salt is deliberately fixed: it matches every credential row already in
// production, and changing it would invalidate all of them. A per-record salt
// is a known improvement that requires a data migration first.
const (
	kdfSalt       = "fixed-salt-landing"
	kdfIterations = 100_000
	keyLen        = 32
	nonceLen      = 12
)

// DeriveKey stretches the master secret into a 256-bit AES key. Pure function
// of its input; callers that decrypt in a loop may cache the result per secret.
func DeriveKey(masterSecret string) []byte {
	return pbkdf2.Key([]byte(masterSecret), []byte(kdfSalt), kdfIterations, keyLen, sha256.New)
}

// EncryptJSON serialises v to JSON and encrypts it with AES-256-GCM under a
// key derived from masterSecret. The ciphertext and nonce are returned as hex
// strings ready for storage. A new random nonce is generated on every call.
func EncryptJSON(v any, masterSecret string) (cipherHex, ivHex string, err error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal credentials: %w", err)
	}
	block, err := aes.NewCipher(DeriveKey(masterSecret))
	if err != nil {
		return "", "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", err
	}
	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plain, nil)
	return hex.EncodeToString(sealed), hex.EncodeToString(nonce), nil
}

// DecryptJSON reverses EncryptJSON. It fails closed: tampered ciphertext, a
// wrong master secret, malformed hex, a bad nonce length or non-JSON plaintext
// all yield nil rather than an error. Callers treat nil as "credentials
// corrupt or absent".
func DecryptJSON(cipherHex, ivHex, masterSecret string) map[string]any {
	if cipherHex == "" || ivHex == "" {
		return nil
	}
	sealed, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil
	}
	nonce, err := hex.DecodeString(ivHex)
	if err != nil || len(nonce) != nonceLen {
		return nil
	}
	block, err := aes.NewCipher(DeriveKey(masterSecret))
	if err != nil {
		return nil
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(plain, &out); err != nil {
		return nil
	}
	return out
}
