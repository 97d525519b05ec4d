package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Argon2Params {
	return Argon2Params{Memory: 8192, Iterations: 2, Parallelism: 1, SaltLength: 16}
}

func TestWrapUnwrapKey(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	wrapped, err := WrapKey(key, "correct horse", testParams())
	require.NoError(t, err)
	assert.True(t, IsWrapped(wrapped))
	assert.True(t, strings.HasPrefix(wrapped, "$argon2id-aesgcm$v=19$m=8192,t=2,p=1$"))

	unwrapped, err := UnwrapKey(wrapped, "correct horse")
	require.NoError(t, err)
	assert.True(t, key.Equal(unwrapped))
}

func TestUnwrapKey_WrongPassphrase(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	wrapped, err := WrapKey(key, "correct horse", testParams())
	require.NoError(t, err)

	_, err = UnwrapKey(wrapped, "battery staple")
	assert.True(t, IsKeyMismatch(err))
}

func TestUnwrapKey_InvalidFormat(t *testing.T) {
	for _, stored := range []string{"", "plainbase64==", "$argon2id-aesgcm$v=1$m=1,t=1,p=1$a$b", "$argon2id-aesgcm$v=19$bogus$a$b"} {
		_, err := UnwrapKey(stored, "pw")
		assert.True(t, errors.Is(err, ErrInvalidKey), "stored=%q", stored)
	}
}

func TestWrapKey_Rejects(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = WrapKey(key, "", testParams())
	assert.Error(t, err)

	_, err = WrapKey(key, "pw", Argon2Params{})
	assert.Error(t, err)
}

func TestArgon2Params_Validate(t *testing.T) {
	tests := []struct {
		name     string
		params   Argon2Params
		wantErr  bool
		errCount int
		errKeys  []string
	}{
		{
			name:    "default params",
			params:  DefaultArgon2Params(),
			wantErr: false,
		},
		{
			name:     "multiple errors",
			params:   Argon2Params{Memory: 1000, Iterations: 1, Parallelism: 1, SaltLength: 8},
			wantErr:  true,
			errCount: 3,
			errKeys:  []string{"memory", "iterations", "saltLength"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			errs, ok := err.(errsx.Map)
			require.True(t, ok, "expected error to be of type errsx.Map")
			assert.Equal(t, tt.errCount, len(errs))
			for _, key := range tt.errKeys {
				_, ok := errs[key]
				assert.True(t, ok, "expected key '%s' in errsx.Map", key)
			}
		})
	}
}
