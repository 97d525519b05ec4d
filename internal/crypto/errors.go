package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrDecryption = errors.New("decryption failed")
	ErrInvalidKey = errors.New("invalid key material")
)

// Reason tells why a blob could not be decrypted.
type Reason string

const (
	ReasonTruncated      Reason = "truncated"
	ReasonAuthentication Reason = "authentication"
	ReasonMalformed      Reason = "malformed"
	ReasonInvalidKey     Reason = "invalid_key"
)

// DecryptionError is returned by Decrypt and DecryptData. ReasonAuthentication covers
// both a wrong key and a tampered blob; AES-GCM cannot tell them apart.
type DecryptionError struct {
	Reason Reason
	Err    error
}

func newDecryptionError(reason Reason, err error) error {
	return &DecryptionError{Reason: reason, Err: err}
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDecryption, e.Reason, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

func (e *DecryptionError) Is(target error) bool { return target == ErrDecryption }

// IsKeyMismatch reports whether err is an authentication failure, the symptom of a
// blob sealed under a different key.
func IsKeyMismatch(err error) bool {
	var de *DecryptionError
	return errors.As(err, &de) && de.Reason == ReasonAuthentication
}
