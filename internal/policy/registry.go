package policy

import (
	"fmt"
	"maps"
	"slices"
)

// Registry maps field names to classifications. It is an immutable value: With returns
// a modified copy and no method changes the receiver.
type Registry struct {
	fields map[string]Classification
}

// NewRegistry builds a registry from a field map. It fails on unknown classifications.
func NewRegistry(fields map[string]Classification) (Registry, error) {
	for name, c := range fields {
		if name == "" {
			return Registry{}, fmt.Errorf("field name cannot be empty")
		}
		if !c.IsValid() {
			return Registry{}, fmt.Errorf("field %q has unknown classification %q", name, c)
		}
	}
	return Registry{fields: maps.Clone(fields)}, nil
}

var defaultFields = map[string]Classification{
	// profile fields shown on the public panel
	"displayName":       PublicAllowed,
	"skillTags":         PublicAllowed,
	"publicBio":         PublicAllowed,
	"experienceSummary": PublicAllowed,
	"extractedFromCV":   PublicAllowed,

	// draft keys produced by extraction
	"extractedDisplayName":       PublicAllowed,
	"extractedBio":               PublicAllowed,
	"extractedSkillTags":         PublicAllowed,
	"extractedExperienceSummary": PublicAllowed,
	"sapDomains":                 PrivateOnly,
	"btpExperience":              PrivateOnly,
	"aiTransformationRoles":      PrivateOnly,

	"jurisdiction":       PrivateOnly,
	"walletAddress":      PrivateOnly,
	"walletConnected":    PrivateOnly,
	"onboardingStatus":   PrivateOnly,
	"profileVisibility":  PrivateOnly,
	"profileVersions":    PrivateOnly,
	"currentStep":        PrivateOnly,
	"mintStatus":         PrivateOnly,
	"tokenId":            PrivateOnly,
	"verificationStatus": PrivateOnly,
	"lastCommitmentHash": PrivateOnly,
	"lastCommitmentSalt": PrivateOnly,
	"profileConfirmed":   PrivateOnly,

	"email":         RestrictedNeverPublic,
	"rawCV":         RestrictedNeverPublic,
	"cvFileName":    RestrictedNeverPublic,
	"documents":     RestrictedNeverPublic,
	"nationalId":    RestrictedNeverPublic,
	"taxId":         RestrictedNeverPublic,
	"dateOfBirth":   RestrictedNeverPublic,
	"consentsGiven": RestrictedNeverPublic,
}

// DefaultRegistry returns the registry of every onboarding profile field.
func DefaultRegistry() Registry {
	return Registry{fields: maps.Clone(defaultFields)}
}

// With returns a copy of r with field set to c.
func (r Registry) With(field string, c Classification) Registry {
	fields := maps.Clone(r.fields)
	if fields == nil {
		fields = make(map[string]Classification, 1)
	}
	fields[field] = c
	return Registry{fields: fields}
}

// Lookup returns the classification of field and whether it is listed.
func (r Registry) Lookup(field string) (Classification, bool) {
	c, ok := r.fields[field]
	return c, ok
}

// Classify returns the classification of field. Unlisted fields fail in Strict mode and
// fall back to PrivateOnly in Lenient mode.
func (r Registry) Classify(field string, mode StrictnessMode) (Classification, error) {
	if c, ok := r.fields[field]; ok {
		return c, nil
	}
	if mode == Lenient {
		return PrivateOnly, nil
	}
	return "", NewUnclassifiedFieldError(field)
}

// Fields returns every listed field name, sorted.
func (r Registry) Fields() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// PublicAllowedFields returns the sorted names of PublicAllowed fields.
func (r Registry) PublicAllowedFields() []string {
	return r.filter(func(c Classification) bool { return c == PublicAllowed })
}

// PrivateFields returns the sorted names of every field that is not PublicAllowed.
func (r Registry) PrivateFields() []string {
	return r.filter(func(c Classification) bool { return c != PublicAllowed })
}

// RestrictedFields returns the sorted names of RestrictedNeverPublic fields.
func (r Registry) RestrictedFields() []string {
	return r.filter(func(c Classification) bool { return c == RestrictedNeverPublic })
}

func (r Registry) filter(keep func(Classification) bool) []string {
	out := make([]string, 0, len(r.fields))
	for name, c := range r.fields {
		if keep(c) {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// PickPublicFields copies the PublicAllowed entries of data. Absent keys are skipped.
func (r Registry) PickPublicFields(data map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range data {
		if r.fields[key] == PublicAllowed {
			out[key] = value
		}
	}
	return out
}

// PickPrivateFields copies every entry of data that PickPublicFields leaves out,
// unlisted keys included.
func (r Registry) PickPrivateFields(data map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range data {
		if r.fields[key] != PublicAllowed {
			out[key] = value
		}
	}
	return out
}
