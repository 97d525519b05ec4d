// Package security holds helpers for handling key material in memory.
//
// Sensitive data (passphrase bytes, derived keys) must be kept as []byte, never string.
// Go strings are immutable and cannot be erased.
//
//	kek := deriveKey(passphrase, salt)
//	defer security.ZeroBytes(kek)
package security

import (
	"crypto/subtle"
	"runtime"
)

// ZeroBytes overwrites data with zeros. The slice must not be used for anything else
// afterwards.
func ZeroBytes(data []byte) {
	if len(data) == 0 {
		return
	}
	clear(data)
	runtime.KeepAlive(data)
}

// ConstantTimeEq reports whether a and b are equal without leaking, through timing,
// where they first differ.
func ConstantTimeEq(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ConstantTimeEqString is ConstantTimeEq for strings such as hex digests.
func ConstantTimeEqString(a, b string) bool {
	return ConstantTimeEq([]byte(a), []byte(b))
}

// SecureCopy returns a copy of src that the caller owns and may zero independently.
func SecureCopy(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
