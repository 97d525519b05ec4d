package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/vaultx/internal/crypto"
	"github.com/hengadev/vaultx/internal/vault"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	_, err := s.Get(ctx, "wizard_state")
	assert.ErrorIs(t, err, vault.ErrNotFound)

	require.NoError(t, s.Put(ctx, "wizard_state", []byte{0x00, 0x01, 0xff}))
	got, err := s.Get(ctx, "wizard_state")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xff}, got)

	require.NoError(t, s.Put(ctx, "wizard_state", []byte("second")))
	got, err = s.Get(ctx, "wizard_state")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got, "put overwrites")

	require.NoError(t, s.Put(ctx, "onboarding_state", []byte("other")))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"onboarding_state", "wizard_state"}, keys)

	require.NoError(t, s.Delete(ctx, "wizard_state"))
	require.NoError(t, s.Delete(ctx, "wizard_state"), "deleting a missing key is not an error")
	_, err = s.Get(ctx, "wizard_state")
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vault.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestStore_ClosedDatabaseFails(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, MemoryPath)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Put(ctx, "k", []byte("v")))
	_, err = s.Get(ctx, "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, vault.ErrNotFound)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_AsDurableBackend(t *testing.T) {
	ctx := context.Background()
	durable := openMemory(t)
	mirror := vault.NewMemoryStringStore()

	type record struct {
		CurrentStep int    `json:"currentStep"`
		Name        string `json:"name"`
	}

	keys := vault.NewDeviceKeys(mirror)
	store := vault.NewStore[record](vault.WizardRecord, keys,
		vault.Backend{Name: "mirror", Adapter: vault.NewMirror(mirror)},
		vault.WithDurable(vault.Backend{Name: "sqlite", Adapter: durable}),
	)

	want := record{CurrentStep: 3, Name: "Alexandra"}
	require.NoError(t, store.Save(ctx, want))

	blob, err := durable.Get(ctx, vault.WizardRecord.DurableKey)
	require.NoError(t, err)
	assert.Greater(t, len(blob), crypto.IVSize)
	assert.NotContains(t, string(blob), "Alexandra")

	require.NoError(t, mirror.RemoveItem(vault.WizardRecord.MirrorKey))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}
