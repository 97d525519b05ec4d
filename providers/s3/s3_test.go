package s3bucket

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hengadev/vaultx/internal/vault"
)

// mockS3Client keeps objects in memory, keyed by bucket/key.
type mockS3Client struct {
	mu          sync.Mutex
	objects     map[string][]byte
	contentType map[string]string
	failWith    error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: map[string][]byte{}, contentType: map[string]string{}}
}

func objectID(bucket, key *string) string { return aws.ToString(bucket) + "/" + aws.ToString(key) }

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := objectID(params.Bucket, params.Key)
	m.objects[id] = data
	m.contentType[id] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectID(params.Bucket, params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectID(params.Bucket, params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "bucket", "")
	assert.Error(t, err)
	_, err = New(newMockS3Client(), "", "")
	assert.Error(t, err)
}

func TestStore_ObjectKey(t *testing.T) {
	client := newMockS3Client()

	s, err := New(client, "b", "")
	require.NoError(t, err)
	assert.Equal(t, "wizard_state", s.ObjectKey("wizard_state"))

	s, err = New(client, "b", "users/42/")
	require.NoError(t, err)
	assert.Equal(t, "users/42/wizard_state", s.ObjectKey("wizard_state"))
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	s, err := New(client, "vault-bucket", "profiles")
	require.NoError(t, err)

	_, err = s.Get(ctx, "wizard_state")
	assert.ErrorIs(t, err, vault.ErrNotFound)

	blob := []byte{0x01, 0x02, 0x03}
	require.NoError(t, s.Put(ctx, "wizard_state", blob))
	assert.Equal(t, blob, client.objects["vault-bucket/profiles/wizard_state"])
	assert.Equal(t, "application/octet-stream", client.contentType["vault-bucket/profiles/wizard_state"])

	got, err := s.Get(ctx, "wizard_state")
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	require.NoError(t, s.Delete(ctx, "wizard_state"))
	_, err = s.Get(ctx, "wizard_state")
	assert.ErrorIs(t, err, vault.ErrNotFound)
}

func TestStore_ClientErrors(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	client.failWith = errors.New("access denied")
	s, err := New(client, "b", "")
	require.NoError(t, err)

	_, err = s.Get(ctx, "k")
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, vault.ErrNotFound)
	assert.Error(t, s.Put(ctx, "k", []byte("v")))
	assert.Error(t, s.Delete(ctx, "k"))
}

func TestStore_DurableFailureFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	client := newMockS3Client()
	durable, err := New(client, "b", "")
	require.NoError(t, err)
	mirror := vault.NewMemoryStringStore()

	type record struct {
		CurrentStep int `json:"currentStep"`
	}
	store := vault.NewStore[record](vault.WizardRecord, vault.NewDeviceKeys(mirror),
		vault.Backend{Name: "mirror", Adapter: vault.NewMirror(mirror)},
		vault.WithDurable(vault.Backend{Name: "s3", Adapter: durable}),
	)

	client.failWith = errors.New("service unavailable")
	require.NoError(t, store.Save(ctx, record{CurrentStep: 2}), "durable failures are swallowed")

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.CurrentStep)
}
