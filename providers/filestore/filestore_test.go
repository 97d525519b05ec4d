package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/vaultx/internal/vault"
)

func TestStore_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "mirror.yaml")

	s, err := Open(path)
	require.NoError(t, err)
	_, ok, err := s.GetItem("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem("vaultx_wizard_v1", "AAEC"))
	require.NoError(t, s.SetItem("vaultx_device_key_v1", "a2V5"))
	require.NoError(t, s.RemoveItem("vaultx_device_key_v1"))
	require.NoError(t, s.RemoveItem("never-set"))

	reopened, err := Open(path)
	require.NoError(t, err)
	v, ok, err := reopened.GetItem("vaultx_wizard_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "AAEC", v)
	_, ok, _ = reopened.GetItem("vaultx_device_key_v1")
	assert.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "mirror.yaml"))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SetItem("k", "v"))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "mirror.yaml", entries[0].Name())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "items: [unterminated"},
		{"future version", "version: 9\nitems: {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := Open(path)
			assert.Error(t, err)
		})
	}

	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_FailedWriteKeepsPreviousState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mirror.yaml")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetItem("k", "v1"))

	// a directory where the file should be makes the rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(path, "x"), nil, 0600))

	assert.Error(t, s.SetItem("k", "v2"))
	v, _, _ := s.GetItem("k")
	assert.Equal(t, "v1", v)
}

func TestStore_AsVaultMirror(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mirror.yaml")

	type record struct {
		CurrentStep int    `json:"currentStep"`
		Wallet      string `json:"wallet"`
	}
	open := func() *vault.Store[record] {
		mirror, err := Open(path)
		require.NoError(t, err)
		return vault.NewStore[record](vault.WizardRecord, vault.NewDeviceKeys(mirror),
			vault.Backend{Name: "file", Adapter: vault.NewMirror(mirror)})
	}

	require.NoError(t, open().Save(ctx, record{CurrentStep: 5, Wallet: "addr1secret"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "addr1secret")
	assert.Contains(t, string(raw), vault.DeviceKeyName)

	got, err := open().Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record{CurrentStep: 5, Wallet: "addr1secret"}, *got)
}
