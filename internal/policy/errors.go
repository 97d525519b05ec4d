package policy

import (
	"errors"
	"fmt"
)

var (
	ErrUnclassifiedField = errors.New("unclassified field")
	ErrPolicyViolation   = errors.New("privacy policy invariant violation")
)

// UnclassifiedFieldError is returned in Strict mode for a field missing from the registry.
type UnclassifiedFieldError struct {
	Field string
}

func NewUnclassifiedFieldError(field string) error {
	return &UnclassifiedFieldError{Field: field}
}

func (e *UnclassifiedFieldError) Error() string {
	return fmt.Sprintf("%s: %q must be added to the field registry before use", ErrUnclassifiedField, e.Field)
}

func (e *UnclassifiedFieldError) Is(target error) bool { return target == ErrUnclassifiedField }

// InvariantViolationError names a restricted field found in the public projection.
type InvariantViolationError struct {
	Field  string
	Source string
}

func NewInvariantViolationError(field, source string) error {
	return &InvariantViolationError{Field: field, Source: source}
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: field %q is %s (%s) but is classified %s",
		ErrPolicyViolation, e.Field, RestrictedNeverPublic, e.Source, PublicAllowed)
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrPolicyViolation }
