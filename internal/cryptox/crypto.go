// Package cryptox provides the secret primitives behind every single-use
// token the server issues: high-entropy random secrets handed to clients and
// the one-way digest that is the only form ever persisted or compared.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SecretBits is the entropy of refresh, email-verification and password-reset
// secrets.
const SecretBits = 256

// GenerateSecret returns bits of entropy from crypto/rand encoded as a
// lowercase hex string (bits/4 characters). bits must be a positive multiple
// of 8.
//
// Example:
//
//	raw, err := GenerateSecret(SecretBits)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(raw)) // 64
func GenerateSecret(bits int) (string, error) {
	if bits <= 0 || bits%8 != 0 {
		return "", fmt.Errorf("invalid secret size: %d bits", bits)
	}

	b := make([]byte, bits/8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("secure random source unavailable: %w", err)
	}
	defer WipeByteArray(b)

	return hex.EncodeToString(b), nil
}

// Digest is the deterministic SHA-256 digest of a raw secret, hex encoded.
// Raw secrets never touch storage; lookups always go through Digest.
func Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// WipeByteArray overwrites the contents of b with zeros. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
