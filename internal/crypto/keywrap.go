package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hengadev/errsx"
	"golang.org/x/crypto/argon2"

	"github.com/hengadev/vaultx/internal/security"
)

const wrapScheme = "argon2id-aesgcm"

// Argon2Params defines the Argon2id parameters used to derive a wrapping key from a passphrase.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
}

// DefaultArgon2Params returns recommended parameters for Argon2id
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024, // 64MB
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
	}
}

// Validate checks if the Argon2 parameters are within acceptable ranges
func (a Argon2Params) Validate() error {
	errs := errsx.Map{}
	if a.Memory < 8192 {
		errs.Set("memory", fmt.Errorf("memory must be at least 8192 KiB, got %d", a.Memory))
	}
	if a.Iterations < 2 {
		errs.Set("iterations", fmt.Errorf("iterations must be at least 2, got %d", a.Iterations))
	}
	if a.Parallelism < 1 {
		errs.Set("parallelism", fmt.Errorf("parallelism must be at least 1, got %d", a.Parallelism))
	}
	if a.SaltLength < 16 {
		errs.Set("saltLength", fmt.Errorf("salt length must be at least 16 bytes, got %d", a.SaltLength))
	}
	return errs.AsError()
}

// IsWrapped reports whether stored key material was produced by WrapKey.
func IsWrapped(stored string) bool {
	return strings.HasPrefix(stored, "$"+wrapScheme+"$")
}

// WrapKey seals key under a wrapping key derived from passphrase and encodes the
// parameters, salt and sealed key into one string:
//
//	$argon2id-aesgcm$v=19$m=65536,t=3,p=2$<salt>$<iv ‖ ciphertext>
func WrapKey(key Key, passphrase string, params Argon2Params) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}
	if err := params.Validate(); err != nil {
		return "", fmt.Errorf("validate Argon2Params: %w", err)
	}
	salt := make([]byte, params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	kek := deriveWrappingKey(passphrase, salt, params)
	defer security.ZeroBytes(kek)
	sealed, err := EncryptData(key, kek)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		wrapScheme,
		argon2.Version,
		params.Memory,
		params.Iterations,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sealed),
	), nil
}

// UnwrapKey reverses WrapKey. A wrong passphrase surfaces as a *DecryptionError.
func UnwrapKey(stored, passphrase string) (Key, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != wrapScheme {
		return nil, fmt.Errorf("%w: invalid wrapped key format", ErrInvalidKey)
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported Argon2 version %q", ErrInvalidKey, parts[2])
	}

	var params Argon2Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return nil, fmt.Errorf("%w: invalid parameters: %v", ErrInvalidKey, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt encoding: %v", ErrInvalidKey, err)
	}
	sealed, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key encoding: %v", ErrInvalidKey, err)
	}

	kek := deriveWrappingKey(passphrase, salt, params)
	defer security.ZeroBytes(kek)
	raw, err := DecryptData(sealed, kek)
	if err != nil {
		return nil, err
	}
	defer security.ZeroBytes(raw)
	return ParseKey(raw)
}

func deriveWrappingKey(passphrase string, salt []byte, params Argon2Params) Key {
	return argon2.IDKey([]byte(passphrase), salt, params.Iterations, params.Memory, params.Parallelism, KeySize)
}
