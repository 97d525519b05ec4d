// Package commitment binds each confirmed profile revision to one salted SHA-256 hash
// and chains the revisions into an append-only version list.
package commitment

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/security"
	"github.com/hengadev/vaultx/internal/serialization"
)

// HashPrefix is prepended to every hex digest.
const HashPrefix = "0x"

var (
	ErrInvalidChain = errors.New("invalid profile version chain")
)

// ProfileVersion is one immutable entry of a profile's version history.
type ProfileVersion struct {
	Version           int    `json:"version" yaml:"version"`
	CreatedAt         string `json:"createdAt" yaml:"createdAt"`
	CommitmentHash    string `json:"commitmentHash" yaml:"commitmentHash"`
	SupersedesVersion *int   `json:"supersedesVersion,omitempty" yaml:"supersedesVersion,omitempty"`
}

// Revision is a new version together with the salt that produced its hash.
// The salt belongs in the private vault, never next to the hash.
type Revision struct {
	ProfileVersion
	Salt string
}

// Hasher computes commitment hashes under a privacy registry.
type Hasher struct {
	registry policy.Registry
	newSalt  func() string
	now      func() time.Time
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithSaltFunc replaces the UUIDv4 salt source.
func WithSaltFunc(fn func() string) Option {
	return func(h *Hasher) { h.newSalt = fn }
}

// WithClock replaces time.Now for CreatedAt timestamps.
func WithClock(fn func() time.Time) Option {
	return func(h *Hasher) { h.now = fn }
}

func NewHasher(registry policy.Registry, opts ...Option) *Hasher {
	h := &Hasher{
		registry: registry,
		newSalt:  func() string { return uuid.NewString() },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type canonicalInput struct {
	Public  map[string]any `json:"public"`
	Private map[string]any `json:"private"`
	Salt    string         `json:"salt"`
}

// CommitmentHash splits data into its public and private projections and hashes
// {"public":…,"private":…,"salt":…} with sorted keys. The result is "0x" followed by
// 64 lowercase hex characters.
func (h *Hasher) CommitmentHash(data map[string]any, salt string) (string, error) {
	canonical, err := serialization.Canonical(canonicalInput{
		Public:  h.registry.PickPublicFields(data),
		Private: h.registry.PickPrivateFields(data),
		Salt:    salt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize profile data: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return HashPrefix + hex.EncodeToString(sum[:]), nil
}

// CreateVersion builds the version that follows existing, hashed under a fresh salt.
// The caller appends it; existing is not modified.
func (h *Hasher) CreateVersion(data map[string]any, existing []ProfileVersion) (Revision, error) {
	salt := h.newSalt()
	hash, err := h.CommitmentHash(data, salt)
	if err != nil {
		return Revision{}, err
	}

	v := ProfileVersion{
		Version:        len(existing) + 1,
		CreatedAt:      h.now().UTC().Format(time.RFC3339Nano),
		CommitmentHash: hash,
	}
	if n := len(existing); n > 0 {
		prev := existing[n-1].Version
		v.SupersedesVersion = &prev
	}
	return Revision{ProfileVersion: v, Salt: salt}, nil
}

// Verify recomputes the hash of data under salt and compares it in constant time.
func (h *Hasher) Verify(data map[string]any, salt, hash string) bool {
	computed, err := h.CommitmentHash(data, salt)
	if err != nil {
		return false
	}
	return security.ConstantTimeEqString(computed, hash)
}

// ValidateChain checks that versions are numbered 1..n and that every version after
// the first supersedes its predecessor.
func ValidateChain(versions []ProfileVersion) error {
	for i, v := range versions {
		want := i + 1
		if v.Version != want {
			return fmt.Errorf("%w: entry %d has version %d, expected %d", ErrInvalidChain, i, v.Version, want)
		}
		if !IsHash(v.CommitmentHash) {
			return fmt.Errorf("%w: version %d has malformed commitment hash", ErrInvalidChain, want)
		}
		switch {
		case want == 1 && v.SupersedesVersion != nil:
			return fmt.Errorf("%w: version 1 cannot supersede version %d", ErrInvalidChain, *v.SupersedesVersion)
		case want > 1 && (v.SupersedesVersion == nil || *v.SupersedesVersion != want-1):
			return fmt.Errorf("%w: version %d must supersede version %d", ErrInvalidChain, want, want-1)
		}
	}
	return nil
}

// IsHash reports whether s has the commitment hash format.
func IsHash(s string) bool {
	if len(s) != len(HashPrefix)+2*sha256.Size || s[:len(HashPrefix)] != HashPrefix {
		return false
	}
	for _, c := range s[len(HashPrefix):] {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
