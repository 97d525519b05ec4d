// Package onboarding holds the six-step onboarding record persisted next to the wizard state.
package onboarding

import (
	"fmt"

	"github.com/hengadev/vaultx/internal/commitment"
)

const (
	FirstStep = 1
	LastStep  = 6
)

type VerificationStatus string

const (
	VerificationIdle         VerificationStatus = "idle"
	VerificationSubmitted    VerificationStatus = "submitted"
	VerificationApproved     VerificationStatus = "approved"
	VerificationDemoApproved VerificationStatus = "demo-approved"
)

type MintStatus string

const (
	MintIdle    MintStatus = "idle"
	MintMinting MintStatus = "minting"
	MintMinted  MintStatus = "minted"
)

type ProfileDraft struct {
	DisplayName       string   `json:"displayName"`
	PublicBio         string   `json:"publicBio"`
	SkillTags         []string `json:"skillTags"`
	ExperienceSummary string   `json:"experienceSummary"`
	ExtractedFromCV   bool     `json:"extractedFromCV"`
}

// Map returns the draft keyed by its field names, the form commitment hashing expects.
func (d ProfileDraft) Map() map[string]any {
	tags := make([]any, len(d.SkillTags))
	for i, t := range d.SkillTags {
		tags[i] = t
	}
	return map[string]any{
		"displayName":       d.DisplayName,
		"publicBio":         d.PublicBio,
		"skillTags":         tags,
		"experienceSummary": d.ExperienceSummary,
		"extractedFromCV":   d.ExtractedFromCV,
	}
}

type Consents struct {
	DataProcessing         bool `json:"dataProcessing"`
	CredentialVerification bool `json:"credentialVerification"`
	AIExtraction           bool `json:"aiExtraction"`
}

// State is the onboarding record. CurrentStep runs from 1 to 6.
type State struct {
	CurrentStep int `json:"currentStep"`

	WalletAddress   string `json:"walletAddress,omitempty"`
	WalletConnected bool   `json:"walletConnected"`

	Jurisdiction string `json:"jurisdiction"`
	CVFileName   string `json:"cvFileName,omitempty"`

	ConsentsGiven Consents `json:"consentsGiven"`

	ProfileDraft     ProfileDraft `json:"profileDraft"`
	ProfileConfirmed bool         `json:"profileConfirmed"`

	VerificationStatus VerificationStatus `json:"verificationStatus"`
	LastCommitmentHash string             `json:"lastCommitmentHash,omitempty"`
	LastCommitmentSalt string             `json:"lastCommitmentSalt,omitempty"`

	MintStatus MintStatus `json:"mintStatus"`
	TokenID    string     `json:"tokenId,omitempty"`

	ProfileVersions []commitment.ProfileVersion `json:"profileVersions"`
}

func DefaultState() State {
	return State{
		CurrentStep: FirstStep,
		ProfileDraft: ProfileDraft{
			SkillTags: []string{},
		},
		VerificationStatus: VerificationIdle,
		MintStatus:         MintIdle,
		ProfileVersions:    []commitment.ProfileVersion{},
	}
}

// Validate checks the step range.
func (s State) Validate() error {
	if s.CurrentStep < FirstStep || s.CurrentStep > LastStep {
		return fmt.Errorf("current step %d out of range [%d, %d]", s.CurrentStep, FirstStep, LastStep)
	}
	return nil
}

// Confirm records a new profile version for the current draft and returns the updated
// record. s is not modified.
func Confirm(s State, hasher *commitment.Hasher) (State, error) {
	rev, err := hasher.CreateVersion(s.ProfileDraft.Map(), s.ProfileVersions)
	if err != nil {
		return s, fmt.Errorf("failed to create profile version: %w", err)
	}
	versions := make([]commitment.ProfileVersion, 0, len(s.ProfileVersions)+1)
	versions = append(versions, s.ProfileVersions...)
	s.ProfileVersions = append(versions, rev.ProfileVersion)
	s.ProfileConfirmed = true
	s.LastCommitmentHash = rev.CommitmentHash
	s.LastCommitmentSalt = rev.Salt
	return s, nil
}
