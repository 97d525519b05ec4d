package services

import (
	"context"
	"strings"
	"time"

	"github.com/hengadev/vaultx/internal/wizard"
)

// MockExtractor returns MockExtractionResult after Delay.
type MockExtractor struct {
	Delay time.Duration
}

func (m *MockExtractor) Extract(ctx context.Context, _ ExtractionRequest) (wizard.ExtractionResult, error) {
	if err := sleep(ctx, m.Delay); err != nil {
		return wizard.ExtractionResult{}, err
	}
	return MockExtractionResult(), nil
}

// MockVerifier approves every gate after Delay once a wallet is connected.
type MockVerifier struct {
	Delay time.Duration
}

func (m *MockVerifier) Verify(ctx context.Context, state wizard.State) ([]wizard.VerificationGate, error) {
	if state.WalletAddress == nil || *state.WalletAddress == "" {
		return nil, ErrWalletRequired
	}
	if err := sleep(ctx, m.Delay); err != nil {
		return nil, err
	}
	return ApprovedVerificationGates(), nil
}

// MockMinter fabricates a token for the request after Delay. Nothing is submitted anywhere.
type MockMinter struct {
	Delay time.Duration
	Now   func() time.Time
}

func (m *MockMinter) Mint(ctx context.Context, req MintRequest) (wizard.NFTMintResult, error) {
	if req.OwnerAddress == "" {
		return wizard.NFTMintResult{}, ErrWalletRequired
	}
	if err := sleep(ctx, m.Delay); err != nil {
		return wizard.NFTMintResult{}, err
	}

	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	refs := req.CommitmentRefs
	if len(refs) == 0 {
		refs = []string{
			"midnight://commitment/" + randomHex()[:36],
			"midnight://commitment/" + randomHex()[:36],
			"midnight://proof/" + randomHex()[:36],
		}
	}
	tags := req.SkillTags
	if len(tags) == 0 {
		tags = MockSkillTags()
	}
	return wizard.NFTMintResult{
		TokenID:            "legeon_profile_" + randomHex()[:16],
		PolicyID:           randomHex()[:56],
		OwnerWalletAddress: req.OwnerAddress,
		MetadataURI:        "ipfs://Qm" + randomHex()[:44],
		CommitmentRefs:     append([]string(nil), refs...),
		SkillTags:          append([]string(nil), tags...),
		MintedAt:           now().UTC(),
		TxHash:             randomHex(),
	}, nil
}

// SplitSkillTags turns a comma separated skill list into trimmed tags.
func SplitSkillTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
