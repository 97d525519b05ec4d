package services

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hengadev/vaultx/internal/wizard"
)

// ComplianceSnapshot is the non-PII view of a session that compliance rules run against.
// It carries counts and statuses only, never profile values or wallet addresses.
type ComplianceSnapshot struct {
	Jurisdiction           string          `expr:"jurisdiction"`
	SupportedJurisdictions []string        `expr:"supportedJurisdictions"`
	Consents               map[string]bool `expr:"consents"`
	FileCount              int             `expr:"fileCount"`
	VerificationCount      int             `expr:"verificationCount"`
	VerificationApproved   bool            `expr:"verificationApproved"`
	VerificationPending    bool            `expr:"verificationPending"`
	DraftStatus            string          `expr:"draftStatus"`
	DraftFieldCount        int             `expr:"draftFieldCount"`
}

// SnapshotOf builds the compliance view of s.
func SnapshotOf(s wizard.State) ComplianceSnapshot {
	consents := make(map[string]bool, len(s.Consents))
	for c, given := range s.Consents {
		consents[string(c)] = given
	}
	approved := len(s.VerificationGates) > 0
	pending := false
	for _, g := range s.VerificationGates {
		if g.Status != wizard.VerificationApproved {
			approved = false
		}
		if g.Status == wizard.VerificationPending {
			pending = true
		}
	}
	filled := 0
	for _, v := range s.ProfileDraft {
		if v != "" {
			filled++
		}
	}
	return ComplianceSnapshot{
		Jurisdiction:           s.Jurisdiction,
		SupportedJurisdictions: JurisdictionCodes(),
		Consents:               consents,
		FileCount:              len(s.UploadedFiles),
		VerificationCount:      len(s.VerificationGates),
		VerificationApproved:   approved,
		VerificationPending:    pending,
		DraftStatus:            string(s.ProfileDraftStatus),
		DraftFieldCount:        filled,
	}
}

// ComplianceRule produces one gate. Review is checked before Pass; a rule whose
// expressions are both false fails.
type ComplianceRule struct {
	ID           string
	Label        string
	Pass         string
	Review       string
	PassDetail   string
	ReviewDetail string
	FailDetail   string
}

// DefaultComplianceRules are the four onboarding gates.
func DefaultComplianceRules() []ComplianceRule {
	return []ComplianceRule{
		{
			ID:           "cg-1",
			Label:        "Jurisdiction Compliance",
			Pass:         `jurisdiction in supportedJurisdictions`,
			Review:       `jurisdiction == ""`,
			PassDetail:   "Onboarding permitted in selected jurisdiction",
			ReviewDetail: "No jurisdiction selected",
			FailDetail:   "Onboarding is not available in the selected jurisdiction",
		},
		{
			ID:           "cg-2",
			Label:        "Credential Verification",
			Pass:         `fileCount > 0 && verificationApproved`,
			Review:       `verificationPending`,
			PassDetail:   "All submitted credentials have been verified",
			ReviewDetail: "Credential verification is still running",
			FailDetail:   "Submitted credentials could not be verified",
		},
		{
			ID:    "cg-3",
			Label: "Data Processing Consent",
			Pass: `consents["DATA_PROCESSING"] && consents["AI_EXTRACTION"] && ` +
				`consents["CREDENTIAL_VERIFICATION"]`,
			PassDetail: "Required consents recorded and valid",
			FailDetail: "One or more required consents are missing",
		},
		{
			ID:           "cg-4",
			Label:        "Profile Completeness",
			Pass:         `draftStatus == "CONFIRMED" && draftFieldCount > 0`,
			Review:       `draftStatus == "DRAFT" && draftFieldCount > 0`,
			PassDetail:   "All required profile fields confirmed by consultant",
			ReviewDetail: "Profile draft awaits confirmation",
			FailDetail:   "Profile is empty or was discarded",
		},
	}
}

type compiledRule struct {
	rule   ComplianceRule
	pass   *vm.Program
	review *vm.Program
}

// ExprComplianceEvaluator evaluates compliance rules written in expr-lang.
type ExprComplianceEvaluator struct {
	rules []compiledRule
}

// NewExprComplianceEvaluator compiles rules against ComplianceSnapshot. Every expression
// must type-check to a bool.
func NewExprComplianceEvaluator(rules []ComplianceRule) (*ExprComplianceEvaluator, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.ID == "" || r.Pass == "" {
			return nil, fmt.Errorf("%w: rule %q needs an id and a pass expression", ErrInvalidRule, r.ID)
		}
		c := compiledRule{rule: r}
		var err error
		if c.pass, err = compileRule(r.Pass); err != nil {
			return nil, fmt.Errorf("%w: %s pass: %v", ErrInvalidRule, r.ID, err)
		}
		if r.Review != "" {
			if c.review, err = compileRule(r.Review); err != nil {
				return nil, fmt.Errorf("%w: %s review: %v", ErrInvalidRule, r.ID, err)
			}
		}
		compiled = append(compiled, c)
	}
	return &ExprComplianceEvaluator{rules: compiled}, nil
}

func compileRule(expression string) (*vm.Program, error) {
	return expr.Compile(expression, expr.Env(ComplianceSnapshot{}), expr.AsBool())
}

// Evaluate runs every rule against the snapshot of state.
func (e *ExprComplianceEvaluator) Evaluate(ctx context.Context, state wizard.State) ([]wizard.ComplianceGate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := SnapshotOf(state)

	gates := make([]wizard.ComplianceGate, 0, len(e.rules))
	for _, c := range e.rules {
		status, detail, err := c.evaluate(snapshot)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", c.rule.ID, err)
		}
		gates = append(gates, wizard.ComplianceGate{
			ID:     c.rule.ID,
			Label:  c.rule.Label,
			Status: status,
			Detail: detail,
		})
	}
	return gates, nil
}

func (c compiledRule) evaluate(snapshot ComplianceSnapshot) (wizard.ComplianceStatus, string, error) {
	if c.review != nil {
		ok, err := runBool(c.review, snapshot)
		if err != nil {
			return "", "", err
		}
		if ok {
			return wizard.ComplianceReview, c.rule.ReviewDetail, nil
		}
	}
	ok, err := runBool(c.pass, snapshot)
	if err != nil {
		return "", "", err
	}
	if ok {
		return wizard.CompliancePass, c.rule.PassDetail, nil
	}
	return wizard.ComplianceFail, c.rule.FailDetail, nil
}

func runBool(program *vm.Program, snapshot ComplianceSnapshot) (bool, error) {
	out, err := expr.Run(program, snapshot)
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %T, want bool", out)
	}
	return b, nil
}

// AllPass reports whether every gate passed. An empty list does not pass.
func AllPass(gates []wizard.ComplianceGate) bool {
	if len(gates) == 0 {
		return false
	}
	for _, g := range gates {
		if g.Status != wizard.CompliancePass {
			return false
		}
	}
	return true
}
