package vaultx

import (
	"github.com/hengadev/vaultx/internal/commitment"
	"github.com/hengadev/vaultx/internal/health"
	"github.com/hengadev/vaultx/internal/onboarding"
	"github.com/hengadev/vaultx/internal/policy"
	"github.com/hengadev/vaultx/internal/services"
	"github.com/hengadev/vaultx/internal/vault"
	"github.com/hengadev/vaultx/internal/wizard"
)

// Aliases so callers can use the session API without importing internal packages.
type (
	State           = wizard.State
	Step            = wizard.Step
	Action          = wizard.Action
	OnboardingState = onboarding.State
	ProfileVersion  = commitment.ProfileVersion
	Classification  = policy.Classification
	Registry        = policy.Registry
	StrictnessMode  = policy.StrictnessMode
	Backend         = vault.Backend
	Adapter         = vault.Adapter
	StringStore     = vault.StringStore
	Services        = services.Set
	HealthReport    = health.Report
)

// Wizard steps.
const (
	StepLanding          = wizard.Landing
	StepWalletConnect    = wizard.WalletConnect
	StepUploadDocs       = wizard.UploadDocs
	StepProcessing       = wizard.Processing
	StepReviewConfirm    = wizard.ReviewConfirm
	StepVerificationMint = wizard.VerificationMint
	StepDiscordSuccess   = wizard.DiscordSuccess
)

// Field classifications.
const (
	PublicAllowed         = policy.PublicAllowed
	PrivateOnly           = policy.PrivateOnly
	RestrictedNeverPublic = policy.RestrictedNeverPublic
)

// DefaultRegistry returns the built-in field registry.
func DefaultRegistry() Registry { return policy.DefaultRegistry() }
