package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/vaultx/internal/wizard"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func confirmedState() wizard.State {
	s := wizard.InitialState()
	addr, name := MockWalletAddress, "Nami"
	s.WalletAddress, s.WalletName = &addr, &name
	s.Jurisdiction = "DE"
	for _, c := range wizard.ConsentTypes() {
		s.Consents[c] = true
	}
	s.UploadedFiles = []wizard.UploadedFile{{ID: "f1", Name: "cv.pdf", Type: wizard.CredentialResume}}
	s.ProfileDraft = MockExtractionResult().Draft()
	s.ProfileDraftStatus = wizard.DraftStatusConfirmed
	s.VerificationGates = ApprovedVerificationGates()
	return s
}

func TestJurisdictions(t *testing.T) {
	codes := JurisdictionCodes()
	assert.Equal(t, []string{"US", "GB", "DE", "FR", "NL", "CH", "SG", "AU", "CA", "IN", "BR", "JP", "AE", "IE", "PL", "ZA"}, codes)
	assert.True(t, IsSupportedJurisdiction("JP"))
	assert.False(t, IsSupportedJurisdiction("XX"))

	list := Jurisdictions()
	list[0].Code = "ZZ"
	assert.Equal(t, "US", Jurisdictions()[0].Code, "callers get a copy")
}

func TestMockExtractionResult_DraftKeys(t *testing.T) {
	draft := MockExtractionResult().Draft()
	assert.Len(t, draft, 7)
	assert.Equal(t, "Alexandra Chen", draft["extractedDisplayName"])
	assert.Contains(t, draft, "sapDomains")
}

func TestMockExtractor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&MockExtractor{Delay: time.Hour}).Extract(ctx, ExtractionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockVerifier(t *testing.T) {
	v := &MockVerifier{}

	_, err := v.Verify(context.Background(), wizard.InitialState())
	assert.ErrorIs(t, err, ErrWalletRequired)

	gates, err := v.Verify(context.Background(), confirmedState())
	require.NoError(t, err)
	require.Len(t, gates, 3)
	for _, g := range gates {
		assert.Equal(t, wizard.VerificationApproved, g.Status)
	}
	for _, g := range PendingVerificationGates() {
		assert.Equal(t, wizard.VerificationPending, g.Status)
	}
}

func TestMockMinter(t *testing.T) {
	minted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &MockMinter{Now: func() time.Time { return minted }}

	_, err := m.Mint(context.Background(), MintRequest{})
	assert.ErrorIs(t, err, ErrWalletRequired)

	res, err := m.Mint(context.Background(), MintRequest{OwnerAddress: MockWalletAddress})
	require.NoError(t, err)
	assert.Equal(t, MockWalletAddress, res.OwnerWalletAddress)
	assert.Regexp(t, `^legeon_profile_[0-9a-f]{16}$`, res.TokenID)
	assert.Len(t, res.PolicyID, 56)
	assert.Regexp(t, `^ipfs://Qm[0-9a-f]{44}$`, res.MetadataURI)
	assert.Regexp(t, hex64, res.TxHash)
	assert.Len(t, res.CommitmentRefs, 3)
	assert.Equal(t, MockSkillTags(), res.SkillTags)
	assert.Equal(t, minted, res.MintedAt)

	other, err := m.Mint(context.Background(), MintRequest{OwnerAddress: MockWalletAddress})
	require.NoError(t, err)
	assert.NotEqual(t, res.TxHash, other.TxHash)
}

func TestSplitSkillTags(t *testing.T) {
	assert.Equal(t, []string{"SAP FICO", "Fiori UX"}, SplitSkillTags(" SAP FICO, ,Fiori UX "))
	assert.Nil(t, SplitSkillTags(""))
}

func TestExprComplianceEvaluator(t *testing.T) {
	eval, err := NewExprComplianceEvaluator(DefaultComplianceRules())
	require.NoError(t, err)

	statusOf := func(gates []wizard.ComplianceGate) map[string]wizard.ComplianceStatus {
		out := make(map[string]wizard.ComplianceStatus, len(gates))
		for _, g := range gates {
			out[g.ID] = g.Status
		}
		return out
	}

	tests := []struct {
		name   string
		mutate func(*wizard.State)
		want   map[string]wizard.ComplianceStatus
	}{
		{
			name:   "all gates pass",
			mutate: func(*wizard.State) {},
			want: map[string]wizard.ComplianceStatus{
				"cg-1": wizard.CompliancePass, "cg-2": wizard.CompliancePass,
				"cg-3": wizard.CompliancePass, "cg-4": wizard.CompliancePass,
			},
		},
		{
			name:   "unsupported jurisdiction fails",
			mutate: func(s *wizard.State) { s.Jurisdiction = "XX" },
			want:   map[string]wizard.ComplianceStatus{"cg-1": wizard.ComplianceFail},
		},
		{
			name:   "missing jurisdiction needs review",
			mutate: func(s *wizard.State) { s.Jurisdiction = "" },
			want:   map[string]wizard.ComplianceStatus{"cg-1": wizard.ComplianceReview},
		},
		{
			name:   "pending verification needs review",
			mutate: func(s *wizard.State) { s.VerificationGates = PendingVerificationGates() },
			want:   map[string]wizard.ComplianceStatus{"cg-2": wizard.ComplianceReview},
		},
		{
			name:   "missing consent fails",
			mutate: func(s *wizard.State) { s.Consents[wizard.ConsentAIExtraction] = false },
			want:   map[string]wizard.ComplianceStatus{"cg-3": wizard.ComplianceFail},
		},
		{
			name:   "optional consent is not required",
			mutate: func(s *wizard.State) { s.Consents[wizard.ConsentProfilePublication] = false },
			want:   map[string]wizard.ComplianceStatus{"cg-3": wizard.CompliancePass},
		},
		{
			name:   "unconfirmed draft needs review",
			mutate: func(s *wizard.State) { s.ProfileDraftStatus = wizard.DraftStatusDraft },
			want:   map[string]wizard.ComplianceStatus{"cg-4": wizard.ComplianceReview},
		},
		{
			name:   "empty draft fails",
			mutate: func(s *wizard.State) { s.ProfileDraft = map[string]string{} },
			want:   map[string]wizard.ComplianceStatus{"cg-4": wizard.ComplianceFail},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := confirmedState()
			tt.mutate(&s)

			gates, err := eval.Evaluate(context.Background(), s)
			require.NoError(t, err)
			require.Len(t, gates, 4)

			got := statusOf(gates)
			for id, want := range tt.want {
				assert.Equal(t, want, got[id], id)
			}
		})
	}
}

func TestExprComplianceEvaluator_AllPass(t *testing.T) {
	eval, err := NewExprComplianceEvaluator(DefaultComplianceRules())
	require.NoError(t, err)

	gates, err := eval.Evaluate(context.Background(), confirmedState())
	require.NoError(t, err)
	assert.True(t, AllPass(gates))
	assert.False(t, AllPass(nil))
}

func TestExprComplianceEvaluator_InvalidRules(t *testing.T) {
	tests := []struct {
		name string
		rule ComplianceRule
	}{
		{"missing id", ComplianceRule{Pass: "true"}},
		{"missing pass", ComplianceRule{ID: "x"}},
		{"syntax error", ComplianceRule{ID: "x", Pass: "fileCount >"}},
		{"not a bool", ComplianceRule{ID: "x", Pass: "fileCount + 1"}},
		{"unknown variable", ComplianceRule{ID: "x", Pass: "walletAddress != ''"}},
		{"bad review", ComplianceRule{ID: "x", Pass: "true", Review: "draftStatus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExprComplianceEvaluator([]ComplianceRule{tt.rule})
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}
}

func TestSnapshotOf_CarriesNoProfileValues(t *testing.T) {
	snap := SnapshotOf(confirmedState())
	assert.Equal(t, 7, snap.DraftFieldCount)
	assert.Equal(t, 1, snap.FileCount)
	assert.True(t, snap.VerificationApproved)
	assert.False(t, snap.VerificationPending)
	assert.NotContains(t, snap.SupportedJurisdictions, MockWalletAddress)
}

func TestProcessingPipeline(t *testing.T) {
	p := NewProcessingPipeline(&MockExtractor{}, WithTimeScale(0))
	require.Len(t, p.Stages(), 4)

	var seen []string
	res, err := p.Run(context.Background(), ExtractionRequest{}, func(i int, s Stage) {
		assert.Equal(t, len(seen), i)
		seen = append(seen, s.Label)
	})
	require.NoError(t, err)
	assert.Equal(t, MockExtractionResult(), res)
	assert.Equal(t, []string{
		"Encrypting documents",
		"Extracting profile data via AI",
		"Generating cryptographic commitments",
		"Preparing verification artifacts",
	}, seen)
}

func TestProcessingPipeline_DefaultDurations(t *testing.T) {
	want := []time.Duration{1200 * time.Millisecond, 2000 * time.Millisecond, 1500 * time.Millisecond, 800 * time.Millisecond}
	for i, s := range DefaultStages() {
		assert.Equal(t, want[i], s.Duration, s.Label)
	}
}

func TestProcessingPipeline_Cancelled(t *testing.T) {
	p := NewProcessingPipeline(&MockExtractor{}, WithStages([]Stage{{Label: "slow", Duration: time.Hour}}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := p.Run(ctx, ExtractionRequest{}, func(int, Stage) { calls++ })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, calls)
}

func TestNewMockSet(t *testing.T) {
	set, err := NewMockSet(0)
	require.NoError(t, err)
	assert.NotNil(t, set.Extractor)
	assert.NotNil(t, set.Verifier)
	assert.NotNil(t, set.Compliance)
	assert.NotNil(t, set.Minter)
	require.NotNil(t, set.Pipeline)

	res, err := set.Pipeline.Run(context.Background(), ExtractionRequest{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra Chen", res.ExtractedDisplayName.Value)
}
