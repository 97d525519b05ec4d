// Package services declares the external collaborators of an onboarding session and
// ships mock implementations that simulate their latency.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/hengadev/vaultx/internal/wizard"
)

var (
	ErrWalletRequired       = errors.New("a connected wallet is required")
	ErrJurisdictionRequired = errors.New("a jurisdiction is required")
	ErrInvalidRule          = errors.New("invalid compliance rule")
)

// ExtractionRequest describes the documents to extract a profile from.
type ExtractionRequest struct {
	Files        []wizard.UploadedFile
	Jurisdiction string
}

// MintRequest carries the public material a profile token is minted with.
type MintRequest struct {
	OwnerAddress   string
	SkillTags      []string
	CommitmentRefs []string
}

type Extractor interface {
	Extract(ctx context.Context, req ExtractionRequest) (wizard.ExtractionResult, error)
}

type VerificationService interface {
	Verify(ctx context.Context, state wizard.State) ([]wizard.VerificationGate, error)
}

type ComplianceEvaluator interface {
	Evaluate(ctx context.Context, state wizard.State) ([]wizard.ComplianceGate, error)
}

type Minter interface {
	Mint(ctx context.Context, req MintRequest) (wizard.NFTMintResult, error)
}

// Set bundles the collaborators a session talks to.
type Set struct {
	Extractor  Extractor
	Verifier   VerificationService
	Compliance ComplianceEvaluator
	Minter     Minter
	Pipeline   *ProcessingPipeline
}

// NewMockSet wires every collaborator to its mock. delay scales each simulated wait;
// 1 reproduces the reference timings and 0 disables waiting.
func NewMockSet(delay float64) (Set, error) {
	compliance, err := NewExprComplianceEvaluator(DefaultComplianceRules())
	if err != nil {
		return Set{}, err
	}
	// the pipeline's extraction stage already simulates the extractor's latency
	extractor := &MockExtractor{}
	return Set{
		Extractor:  extractor,
		Verifier:   &MockVerifier{Delay: scale(2000*time.Millisecond, delay)},
		Compliance: compliance,
		Minter:     &MockMinter{Delay: scale(3200*time.Millisecond, delay)},
		Pipeline:   NewProcessingPipeline(extractor, WithTimeScale(delay)),
	}, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func scale(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return 0
	}
	return time.Duration(float64(d) * factor)
}
