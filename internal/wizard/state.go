package wizard

import "github.com/hengadev/vaultx/internal/commitment"

// State is the full onboarding session. It is only changed through Machine.Reduce.
type State struct {
	CurrentStep Step `json:"currentStep"`

	WalletAddress *string `json:"walletAddress"`
	WalletName    *string `json:"walletName"`

	Jurisdiction  string               `json:"jurisdiction"`
	Consents      map[ConsentType]bool `json:"consents"`
	UploadedFiles []UploadedFile       `json:"uploadedFiles"`

	ExtractionResult   *ExtractionResult `json:"extractionResult"`
	ProfileDraft       map[string]string `json:"profileDraft"`
	ProfileDraftStatus DraftStatus       `json:"profileDraftStatus"`

	VerificationGates []VerificationGate `json:"verificationGates"`
	ComplianceGates   []ComplianceGate   `json:"complianceGates"`

	NFTResult *NFTMintResult `json:"nftResult"`

	DiscordLinked   bool    `json:"discordLinked"`
	DiscordUsername *string `json:"discordUsername"`

	DemoMode bool `json:"demoMode"`

	// SuppressProcessingAutoAdvance is set when Processing is re-entered backwards
	// and stops the processing pipeline from running again on its own.
	SuppressProcessingAutoAdvance bool `json:"suppressProcessingAutoAdvance"`

	ProfileVersionHistory []commitment.ProfileVersion `json:"profileVersionHistory"`
	LastCommitmentSalt    string                      `json:"lastCommitmentSalt,omitempty"`
}

// InitialState is the state of a fresh session.
func InitialState() State {
	consents := make(map[ConsentType]bool, 4)
	for _, c := range ConsentTypes() {
		consents[c] = false
	}
	return State{
		CurrentStep:           Landing,
		Consents:              consents,
		UploadedFiles:         []UploadedFile{},
		ProfileDraft:          map[string]string{},
		ProfileDraftStatus:    DraftStatusDraft,
		VerificationGates:     []VerificationGate{},
		ComplianceGates:       []ComplianceGate{},
		ProfileVersionHistory: []commitment.ProfileVersion{},
	}
}

// ShouldAutoRunProcessing reports whether the processing pipeline may start on its own.
func ShouldAutoRunProcessing(s State) bool {
	return s.CurrentStep == Processing && !s.SuppressProcessingAutoAdvance
}

// RequiredConsentsGiven reports whether every required consent is set.
func (s State) RequiredConsentsGiven() bool {
	for _, c := range ConsentTypes() {
		if c.Required() && !s.Consents[c] {
			return false
		}
	}
	return true
}

// DraftAsMap converts the profile draft into the map form commitment hashing expects.
func (s State) DraftAsMap() map[string]any {
	out := make(map[string]any, len(s.ProfileDraft))
	for k, v := range s.ProfileDraft {
		out[k] = v
	}
	return out
}
