// Package vault persists encrypted records across a synchronous mirror store and one or
// more durable stores, and owns the device key that encrypts them.
package vault

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("vault: not found")
	ErrCorruptBlob = errors.New("vault: corrupt blob")
	ErrMirrorWrite = errors.New("vault: mirror write failed")
)

// Adapter is the capability every storage backend offers.
// Get returns ErrNotFound for a missing key; Delete of a missing key is not an error.
type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}

// StringStore is a synchronous, string-only key/value store.
type StringStore interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Backend is a named adapter.
type Backend struct {
	Name    string
	Adapter Adapter
}

// Mirror adapts a StringStore to Adapter by base64-encoding blobs.
type Mirror struct {
	store StringStore
}

func NewMirror(store StringStore) *Mirror {
	return &Mirror{store: store}
}

func (m *Mirror) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, ok, err := m.store.GetItem(key)
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return nil, ErrNotFound
	}
	blob, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	return blob, nil
}

func (m *Mirror) Put(ctx context.Context, key string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.store.SetItem(key, base64.StdEncoding.EncodeToString(blob))
}

func (m *Mirror) Delete(ctx context.Context, key string) error {
	return m.store.RemoveItem(key)
}
