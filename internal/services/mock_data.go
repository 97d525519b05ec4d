package services

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"

	"github.com/google/uuid"

	"github.com/hengadev/vaultx/internal/wizard"
)

// MockWalletAddress is the address the demo wallet reports.
const MockWalletAddress = "addr1qx2fxv2umyhttkxyxp8x0dlpdt3k6cwng5pxj3jhsydzer3jcu5d8ps7zex2k2xt3uqxgjqnnj83ws8lhrn648jjxtwq2ytjqp"

type Jurisdiction struct {
	Code string
	Name string
}

var jurisdictions = []Jurisdiction{
	{"US", "United States"},
	{"GB", "United Kingdom"},
	{"DE", "Germany"},
	{"FR", "France"},
	{"NL", "Netherlands"},
	{"CH", "Switzerland"},
	{"SG", "Singapore"},
	{"AU", "Australia"},
	{"CA", "Canada"},
	{"IN", "India"},
	{"BR", "Brazil"},
	{"JP", "Japan"},
	{"AE", "United Arab Emirates"},
	{"IE", "Ireland"},
	{"PL", "Poland"},
	{"ZA", "South Africa"},
}

// Jurisdictions returns the supported jurisdictions in display order.
func Jurisdictions() []Jurisdiction {
	return slices.Clone(jurisdictions)
}

// JurisdictionCodes returns the ISO 3166-1 alpha-2 code of every supported jurisdiction.
func JurisdictionCodes() []string {
	codes := make([]string, len(jurisdictions))
	for i, j := range jurisdictions {
		codes[i] = j.Code
	}
	return codes
}

// IsSupportedJurisdiction reports whether code is onboarding-enabled.
func IsSupportedJurisdiction(code string) bool {
	return slices.ContainsFunc(jurisdictions, func(j Jurisdiction) bool { return j.Code == code })
}

// MockExtractionResult is the profile the mock extractor returns.
func MockExtractionResult() wizard.ExtractionResult {
	return wizard.ExtractionResult{
		ExtractedDisplayName: wizard.ExtractionField{
			Key: "extractedDisplayName", Label: "Display Name",
			Value:      "Alexandra Chen",
			Confidence: 0.95, Source: "CV Header",
		},
		ExtractedBio: wizard.ExtractionField{
			Key: "extractedBio", Label: "Professional Bio",
			Value:      "Senior SAP FICO consultant with 12+ years of experience in global enterprise implementations. Led S/4HANA migrations for Fortune 500 clients across EMEA and APAC.",
			Confidence: 0.82, Source: "CV Summary Section",
		},
		ExtractedSkillTags: wizard.ExtractionField{
			Key: "extractedSkillTags", Label: "Skill Tags",
			Value:      "SAP FICO, SAP S/4HANA, Financial Planning, Controlling, Treasury Management, ABAP Basics, Fiori UX",
			Confidence: 0.91, Source: "CV Skills Section",
		},
		ExtractedExperienceSummary: wizard.ExtractionField{
			Key: "extractedExperienceSummary", Label: "Experience Summary",
			Value:      "Led SAP FICO implementation for 3 Fortune 500 companies. Managed teams of 8-15 consultants across 4 time zones. Delivered $2.3M in cost savings through process automation.",
			Confidence: 0.78, Source: "CV Experience Section",
		},
		SAPDomains: wizard.ExtractionField{
			Key: "sapDomains", Label: "SAP Domains",
			Value:      "FICO, CO, TR, S/4HANA Finance, Central Finance",
			Confidence: 0.88, Source: "CV Skills + Experience Sections",
		},
		BTPExperience: wizard.ExtractionField{
			Key: "btpExperience", Label: "BTP Pillars / Runtimes / Services",
			Value:      "SAP BTP Cloud Foundry, SAP Build Work Zone, SAP Integration Suite, SAP Analytics Cloud",
			Confidence: 0.72, Source: "CV Projects Section",
		},
		AITransformationRoles: wizard.ExtractionField{
			Key: "aiTransformationRoles", Label: "AI Transformation Roles",
			Value:      "AI Change Lead, Process Mining Analyst",
			Confidence: 0.65, Source: "CV Recent Roles Section",
		},
	}
}

var verificationGates = []wizard.VerificationGate{
	{ID: "vg-1", Label: "Credential Authenticity"},
	{ID: "vg-2", Label: "Identity Confirmation"},
	{ID: "vg-3", Label: "Proof Generation"},
}

var pendingDetails = []string{
	"Verifying uploaded documents against known issuers",
	"Confirming wallet-linked identity matches credentials",
	"Generating zero-knowledge proofs via Midnight",
}

var approvedDetails = []string{
	"Documents verified against known issuers",
	"Wallet-linked identity confirmed",
	"Zero-knowledge proofs generated successfully",
}

// PendingVerificationGates is the gate list shown while verification runs.
func PendingVerificationGates() []wizard.VerificationGate {
	return gatesWith(wizard.VerificationPending, pendingDetails)
}

// ApprovedVerificationGates is the gate list of a successful verification.
func ApprovedVerificationGates() []wizard.VerificationGate {
	return gatesWith(wizard.VerificationApproved, approvedDetails)
}

func gatesWith(status wizard.VerificationStatus, details []string) []wizard.VerificationGate {
	gates := slices.Clone(verificationGates)
	for i := range gates {
		gates[i].Status = status
		gates[i].Detail = details[i]
	}
	return gates
}

// MockSkillTags are the tags minted into the demo profile token.
func MockSkillTags() []string {
	return []string{"SAP FICO", "S/4HANA", "Financial Planning", "Controlling", "Treasury", "Fiori UX"}
}

// randomHex returns 64 lowercase hex characters.
func randomHex() string {
	sum := sha256.Sum256([]byte(uuid.NewString()))
	return hex.EncodeToString(sum[:])
}
