// Package policy is the single authority on which profile fields may be disclosed.
//
// Every consumer (commitment hashing, review panels, the CLI) asks a Registry instead
// of keeping its own field lists.
package policy

import "strings"

// Classification is the disclosure class of a field.
type Classification string

const (
	// PublicAllowed fields may appear in public commitment inputs and public panels.
	PublicAllowed Classification = "PUBLIC_ALLOWED"
	// PrivateOnly fields stay in the vault but feed private commitment inputs.
	PrivateOnly Classification = "PRIVATE_ONLY"
	// RestrictedNeverPublic fields must never be classified PublicAllowed.
	RestrictedNeverPublic Classification = "RESTRICTED_NEVER_PUBLIC"
)

// IsValid reports whether c is one of the known classifications.
func (c Classification) IsValid() bool {
	switch c {
	case PublicAllowed, PrivateOnly, RestrictedNeverPublic:
		return true
	default:
		return false
	}
}

// StrictnessMode selects how unclassified fields are handled.
type StrictnessMode int

const (
	// Strict fails with an UnclassifiedFieldError.
	Strict StrictnessMode = iota
	// Lenient degrades unclassified fields to PrivateOnly.
	Lenient
)

func (m StrictnessMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// StrictnessModeFor maps a deployment environment name to a strictness mode.
// Only production is lenient.
func StrictnessModeFor(env string) StrictnessMode {
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		return Lenient
	}
	return Strict
}
