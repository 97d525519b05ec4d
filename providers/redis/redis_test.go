package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty url", ""},
		{"bad scheme", "http://localhost:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), Config{URL: tt.url})
			assert.Error(t, err)
		})
	}
}

func TestStore_KeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	assert.Equal(t, "vaultx:wizard_state", New(client, "").Key("wizard_state"))
	assert.Equal(t, "tenant-a:wizard_state", New(client, "tenant-a:").Key("wizard_state"))
}

func TestStore_CloseLeavesInjectedClientOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	s := New(client, "")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
