package wizard

import "time"

type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "DRAFT"
	DraftStatusConfirmed DraftStatus = "CONFIRMED"
	DraftStatusDiscarded DraftStatus = "DISCARDED"
)

type ConsentType string

const (
	ConsentDataProcessing         ConsentType = "DATA_PROCESSING"
	ConsentCredentialVerification ConsentType = "CREDENTIAL_VERIFICATION"
	ConsentProfilePublication     ConsentType = "PROFILE_PUBLICATION"
	ConsentAIExtraction           ConsentType = "AI_EXTRACTION"
)

// ConsentTypes lists every consent in display order.
func ConsentTypes() []ConsentType {
	return []ConsentType{
		ConsentDataProcessing,
		ConsentAIExtraction,
		ConsentCredentialVerification,
		ConsentProfilePublication,
	}
}

// Required reports whether the consent must be given before uploading documents.
func (c ConsentType) Required() bool {
	return c != ConsentProfilePublication
}

type CredentialType string

const (
	CredentialResume        CredentialType = "RESUME"
	CredentialCertification CredentialType = "CERTIFICATION"
	CredentialRightToWork   CredentialType = "RIGHT_TO_WORK"
	CredentialTax           CredentialType = "TAX"
	CredentialOther         CredentialType = "OTHER"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationRejected VerificationStatus = "REJECTED"
	VerificationExpired  VerificationStatus = "EXPIRED"
)

type ComplianceStatus string

const (
	CompliancePass   ComplianceStatus = "PASS"
	ComplianceFail   ComplianceStatus = "FAIL"
	ComplianceReview ComplianceStatus = "REVIEW"
)

type UploadedFile struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Size       int64          `json:"size"`
	Type       CredentialType `json:"type"`
	UploadedAt time.Time      `json:"uploadedAt"`
}

// ExtractionField is one extracted profile value with its confidence score in [0, 1].
type ExtractionField struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
	Edited     bool    `json:"edited"`
}

type ExtractionResult struct {
	ExtractedDisplayName       ExtractionField `json:"extractedDisplayName"`
	ExtractedBio               ExtractionField `json:"extractedBio"`
	ExtractedSkillTags         ExtractionField `json:"extractedSkillTags"`
	ExtractedExperienceSummary ExtractionField `json:"extractedExperienceSummary"`
	SAPDomains                 ExtractionField `json:"sapDomains"`
	BTPExperience              ExtractionField `json:"btpExperience"`
	AITransformationRoles      ExtractionField `json:"aiTransformationRoles"`
}

// Fields returns the extracted fields in display order.
func (r ExtractionResult) Fields() []ExtractionField {
	return []ExtractionField{
		r.ExtractedDisplayName,
		r.ExtractedBio,
		r.ExtractedSkillTags,
		r.ExtractedExperienceSummary,
		r.SAPDomains,
		r.BTPExperience,
		r.AITransformationRoles,
	}
}

// Draft builds a profile draft keyed by each field's key.
func (r ExtractionResult) Draft() map[string]string {
	fields := r.Fields()
	draft := make(map[string]string, len(fields))
	for _, f := range fields {
		draft[f.Key] = f.Value
	}
	return draft
}

type VerificationGate struct {
	ID     string             `json:"id"`
	Label  string             `json:"label"`
	Status VerificationStatus `json:"status"`
	Detail string             `json:"detail"`
}

type ComplianceGate struct {
	ID     string           `json:"id"`
	Label  string           `json:"label"`
	Status ComplianceStatus `json:"status"`
	Detail string           `json:"detail"`
}

type NFTMintResult struct {
	TokenID            string    `json:"tokenId"`
	PolicyID           string    `json:"policyId"`
	OwnerWalletAddress string    `json:"ownerWalletAddress"`
	MetadataURI        string    `json:"metadataURI"`
	CommitmentRefs     []string  `json:"commitmentRefs"`
	SkillTags          []string  `json:"skillTags"`
	MintedAt           time.Time `json:"mintedAt"`
	TxHash             string    `json:"txHash"`
}
