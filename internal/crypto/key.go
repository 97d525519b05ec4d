package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hengadev/vaultx/internal/security"
)

// KeySize is the device key length in bytes (AES-256).
const KeySize = 32

// Key is raw symmetric key material.
type Key []byte

// GenerateKey returns a fresh random key. It has no side effects.
func GenerateKey() (Key, error) {
	key := make(Key, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// ParseKey validates imported key material.
func ParseKey(raw []byte) (Key, error) {
	if len(raw) != KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, KeySize, len(raw))
	}
	key := make(Key, KeySize)
	copy(key, raw)
	return key, nil
}

// Equal reports whether two keys hold the same material.
func (k Key) Equal(other Key) bool {
	return security.ConstantTimeEq(k, other)
}
