package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Classify(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		field string
		want  Classification
	}{
		{"displayName", PublicAllowed},
		{"extractedFromCV", PublicAllowed},
		{"extractedBio", PublicAllowed},
		{"sapDomains", PrivateOnly},
		{"jurisdiction", PrivateOnly},
		{"lastCommitmentSalt", PrivateOnly},
		{"email", RestrictedNeverPublic},
		{"consentsGiven", RestrictedNeverPublic},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := r.Classify(tt.field, Strict)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_Unclassified(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Classify("__unknown_field__", Strict)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnclassifiedField))

	var ue *UnclassifiedFieldError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "__unknown_field__", ue.Field)

	got, err := r.Classify("__unknown_field__", Lenient)
	require.NoError(t, err)
	assert.Equal(t, PrivateOnly, got)
}

func TestStrictnessModeFor(t *testing.T) {
	assert.Equal(t, Lenient, StrictnessModeFor("production"))
	assert.Equal(t, Lenient, StrictnessModeFor(" Production "))
	assert.Equal(t, Strict, StrictnessModeFor("development"))
	assert.Equal(t, Strict, StrictnessModeFor("test"))
	assert.Equal(t, Strict, StrictnessModeFor(""))
}

func TestPublicAndPrivateFieldsAreDisjoint(t *testing.T) {
	r := DefaultRegistry()
	public := r.PublicAllowedFields()
	private := r.PrivateFields()

	for _, field := range public {
		assert.NotContains(t, private, field)
	}
	assert.Contains(t, private, "jurisdiction")
	assert.Contains(t, private, "walletAddress")
	assert.Contains(t, private, "email")
	assert.Contains(t, private, "rawCV")
	assert.Len(t, r.Fields(), len(public)+len(private))
	assert.IsNonDecreasing(t, public)
}

func TestPickPublicFields(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name string
		data map[string]any
		want map[string]any
	}{
		{
			name: "mixed object",
			data: map[string]any{
				"displayName":       "Alice",
				"publicBio":         "Bio here.",
				"skillTags":         []string{"SAP"},
				"experienceSummary": "Summary.",
				"extractedFromCV":   false,
				"jurisdiction":      "GB",
				"email":             "alice@example.com",
			},
			want: map[string]any{
				"displayName":       "Alice",
				"publicBio":         "Bio here.",
				"skillTags":         []string{"SAP"},
				"experienceSummary": "Summary.",
				"extractedFromCV":   false,
			},
		},
		{
			name: "no public fields",
			data: map[string]any{"jurisdiction": "GB", "email": "x@y.com"},
			want: map[string]any{},
		},
		{
			name: "nil input",
			data: nil,
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.PickPublicFields(tt.data))
		})
	}
}

func TestPickPrivateFields_IsComplement(t *testing.T) {
	r := DefaultRegistry()
	data := map[string]any{
		"displayName": "Alice",
		"email":       "alice@example.com",
		"custom":      "unlisted",
	}

	public := r.PickPublicFields(data)
	private := r.PickPrivateFields(data)

	assert.Equal(t, map[string]any{"displayName": "Alice"}, public)
	assert.Equal(t, map[string]any{"email": "alice@example.com", "custom": "unlisted"}, private)
}

func TestWith_ReturnsCopy(t *testing.T) {
	original := DefaultRegistry()
	tampered := original.With("email", PublicAllowed)

	got, err := original.Classify("email", Strict)
	require.NoError(t, err)
	assert.Equal(t, RestrictedNeverPublic, got)

	got, err = tampered.Classify("email", Strict)
	require.NoError(t, err)
	assert.Equal(t, PublicAllowed, got)
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(map[string]Classification{"a": "SECRET"})
	assert.Error(t, err)

	_, err = NewRegistry(map[string]Classification{"": PrivateOnly})
	assert.Error(t, err)

	fields := map[string]Classification{"a": PublicAllowed}
	r, err := NewRegistry(fields)
	require.NoError(t, err)
	fields["a"] = PrivateOnly
	c, _ := r.Lookup("a")
	assert.Equal(t, PublicAllowed, c, "registry must not alias the caller's map")
}
