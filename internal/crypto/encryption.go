package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hengadev/vaultx/internal/serialization"
)

// IVSize is the length of the random prefix of every blob. AES-GCM needs a 96-bit nonce.
const IVSize = 12

var serializer serialization.Serializer = serialization.JSONSerializer{}

// Encrypt serializes v, seals it under key with a freshly drawn IV and returns IV ‖ ciphertext.
// Two calls with the same v and key never return the same bytes.
func Encrypt(v any, key Key) ([]byte, error) {
	plaintext, err := serializer.Serialize(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize value: %w", err)
	}
	return EncryptData(plaintext, key)
}

// Decrypt opens a blob produced by Encrypt and deserializes the plaintext into out.
// Every failure is a *DecryptionError.
func Decrypt(blob []byte, key Key, out any) error {
	plaintext, err := DecryptData(blob, key)
	if err != nil {
		return err
	}
	if err := serializer.Deserialize(plaintext, out); err != nil {
		return newDecryptionError(ReasonMalformed, err)
	}
	return nil
}

// EncryptData seals raw bytes and returns IV ‖ ciphertext.
func EncryptData(plaintext []byte, key Key) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return aesGCM.Seal(iv, iv, plaintext, nil), nil
}

// DecryptData splits the IV from the ciphertext and opens it.
func DecryptData(blob []byte, key Key) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, newDecryptionError(ReasonInvalidKey, err)
	}
	if len(blob) < IVSize+aesGCM.Overhead() {
		return nil, newDecryptionError(ReasonTruncated, fmt.Errorf("blob is %d bytes", len(blob)))
	}
	iv, ciphertext := blob[:IVSize], blob[IVSize:]
	plaintext, err := aesGCM.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, newDecryptionError(ReasonAuthentication, err)
	}
	return plaintext, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCMWithNonceSize(block, IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
