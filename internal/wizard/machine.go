// Package wizard implements the onboarding wizard as a pure transition function.
//
// The Processing step runs a one-shot pipeline. Entering it by forward progression
// lets the pipeline run; re-entering it backwards (PrevStep or GoToStep) sets
// SuppressProcessingAutoAdvance so the pipeline waits for an explicit continue.
// SetExtraction is the only action that clears the flag.
package wizard

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/hengadev/vaultx/internal/commitment"
	"github.com/hengadev/vaultx/internal/monitoring"
)

// Versioner hashes a confirmed draft into the next profile version.
// *commitment.Hasher implements it.
type Versioner interface {
	CreateVersion(data map[string]any, existing []commitment.ProfileVersion) (commitment.Revision, error)
}

// Machine computes wizard transitions. It holds no session state.
type Machine struct {
	versioner Versioner
	demoMode  func() bool
	logger    *slog.Logger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger sets the logger that reports transitions Reduce has to refuse.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMachine returns a machine that versions confirmed profiles with versioner and
// re-derives the demo-mode flag from demoMode on restore. A nil demoMode reads as off.
func NewMachine(versioner Versioner, demoMode func() bool, opts ...MachineOption) *Machine {
	if demoMode == nil {
		demoMode = func() bool { return false }
	}
	m := &Machine{versioner: versioner, demoMode: demoMode, logger: monitoring.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Confirm is the ConfirmProfile transition with its error exposed. On error s is
// returned unchanged.
func (m *Machine) Confirm(s State) (State, error) {
	rev, err := m.versioner.CreateVersion(s.DraftAsMap(), s.ProfileVersionHistory)
	if err != nil {
		return s, fmt.Errorf("failed to version profile draft: %w", err)
	}
	s.ProfileDraftStatus = DraftStatusConfirmed
	s.ProfileVersionHistory = append(slices.Clip(s.ProfileVersionHistory), rev.ProfileVersion)
	s.LastCommitmentSalt = rev.Salt
	return s, nil
}

// Reduce returns the state that follows s under a. s is never modified; maps and
// slices are copied before they change. Unknown actions return s unchanged.
func (m *Machine) Reduce(s State, a Action) State {
	switch a := a.(type) {
	case RestoreState:
		next := a.Saved
		// Sticky: a session restored with demo mode on keeps it even if the source is now off.
		next.DemoMode = a.Saved.DemoMode || m.demoMode()
		return next

	case NextStep:
		s.CurrentStep = clampStep(s.CurrentStep + 1)
		return s

	case PrevStep:
		prev := clampStep(s.CurrentStep - 1)
		if s.CurrentStep == ReviewConfirm && prev < ReviewConfirm {
			s.ProfileDraftStatus = DraftStatusDraft
		}
		s.CurrentStep = prev
		s.SuppressProcessingAutoAdvance = prev == Processing
		return s

	case GoToStep:
		if a.Step >= s.CurrentStep || !a.Step.IsValid() {
			return s
		}
		s.CurrentStep = a.Step
		s.SuppressProcessingAutoAdvance = a.Step == Processing
		return s

	case SetWallet:
		address, name := a.Address, a.Name
		s.WalletAddress, s.WalletName = &address, &name
		return s

	case DisconnectWallet:
		s.WalletAddress, s.WalletName = nil, nil
		return s

	case SetJurisdiction:
		s.Jurisdiction = a.Jurisdiction
		return s

	case ToggleConsent:
		consents := maps.Clone(s.Consents)
		if consents == nil {
			consents = make(map[ConsentType]bool, 1)
		}
		consents[a.Consent] = !consents[a.Consent]
		s.Consents = consents
		return s

	case UploadFile:
		s.UploadedFiles = append(slices.Clip(s.UploadedFiles), a.File)
		return s

	case RemoveFile:
		s.UploadedFiles = slices.DeleteFunc(slices.Clone(s.UploadedFiles), func(f UploadedFile) bool {
			return f.ID == a.FileID
		})
		return s

	case SetExtraction:
		result := a.Result
		s.ExtractionResult = &result
		s.ProfileDraft = result.Draft()
		s.ProfileDraftStatus = DraftStatusDraft
		s.SuppressProcessingAutoAdvance = false
		return s

	case UpdateDraftField:
		draft := maps.Clone(s.ProfileDraft)
		if draft == nil {
			draft = make(map[string]string, 1)
		}
		draft[a.Key] = a.Value
		s.ProfileDraft = draft
		return s

	case ConfirmProfile:
		next, err := m.Confirm(s)
		if err != nil {
			m.logger.Error("profile confirmation refused", "versions", len(s.ProfileVersionHistory), "error", err)
		}
		return next

	case SetVerification:
		s.VerificationGates = a.Gates
		return s

	case SetCompliance:
		s.ComplianceGates = a.Gates
		return s

	case SetNFT:
		result := a.Result
		s.NFTResult = &result
		return s

	case LinkDiscord:
		username := a.Username
		s.DiscordLinked = true
		s.DiscordUsername = &username
		return s

	case EnableDemoMode:
		s.DemoMode = true
		return s

	default:
		return s
	}
}
