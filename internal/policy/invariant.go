package policy

import "slices"

var foreverRestricted = []string{
	"email",
	"rawCV",
	"cvFileName",
	"documents",
	"nationalId",
	"taxId",
	"dateOfBirth",
	"consentsGiven",
}

// ForeverRestrictedFields returns the fixed list of fields that may never be public,
// independent of any registry value.
func ForeverRestrictedFields() []string {
	return slices.Clone(foreverRestricted)
}

// AssertInvariant checks r against two sources: the fixed forever-restricted list and
// r's own RestrictedNeverPublic entries. The first field of either source found in the
// public projection is reported as an *InvariantViolationError.
func AssertInvariant(r Registry) error {
	public := r.PublicAllowedFields()

	for _, field := range foreverRestricted {
		if _, found := slices.BinarySearch(public, field); found {
			return NewInvariantViolationError(field, "forever-restricted list")
		}
	}
	for _, field := range r.RestrictedFields() {
		if _, found := slices.BinarySearch(public, field); found {
			return NewInvariantViolationError(field, "registry")
		}
	}
	return nil
}
