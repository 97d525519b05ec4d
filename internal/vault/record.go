package vault

// Record describes one persisted record kind. Kinds sharing a durable backend must use
// distinct DurableKeys.
type Record struct {
	// Name identifies the record in logs and metrics.
	Name string
	// DurableKey is the lookup key in durable backends.
	DurableKey string
	// MirrorKey is the lookup key in the mirror store.
	MirrorKey string
	// StepField must be a JSON number in the decrypted object for a load to succeed.
	StepField string
}

var (
	WizardRecord = Record{
		Name:       "wizard",
		DurableKey: "wizard_state",
		MirrorKey:  "vaultx_wizard_v1",
		StepField:  "currentStep",
	}
	OnboardingRecord = Record{
		Name:       "onboarding",
		DurableKey: "onboarding_state",
		MirrorKey:  "vaultx_onboarding_v1",
		StepField:  "currentStep",
	}
)
