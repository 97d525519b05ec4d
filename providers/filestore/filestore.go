// Package filestore is a vault mirror StringStore kept in a single YAML file. Every
// write replaces the file atomically before returning.
package filestore

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/vaultx/internal/vault"
)

const formatVersion = 1

type document struct {
	Version int               `yaml:"version"`
	Items   map[string]string `yaml:"items"`
}

// Store implements vault.StringStore.
type Store struct {
	path string

	mu    sync.Mutex
	items map[string]string
}

var _ vault.StringStore = (*Store)(nil)

// Open loads path if it exists. A missing file is an empty store; the file and its
// directory are created on the first write.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filestore: path is empty")
	}
	s := &Store{path: path, items: make(map[string]string)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror file '%s': %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse mirror file '%s': %w", path, err)
	}
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("mirror file '%s' has unsupported version %d", path, doc.Version)
	}
	if doc.Items != nil {
		s.items = doc.Items
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Store) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.items)
	next[key] = value
	if err := s.write(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

func (s *Store) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	next := maps.Clone(s.items)
	delete(next, key)
	if err := s.write(next); err != nil {
		return err
	}
	s.items = next
	return nil
}

// write replaces the file through a temp file and rename. Caller holds mu.
func (s *Store) write(items map[string]string) error {
	data, err := yaml.Marshal(document{Version: formatVersion, Items: items})
	if err != nil {
		return fmt.Errorf("failed to encode mirror file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create mirror directory '%s': %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".mirror-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp mirror file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write mirror file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync mirror file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close mirror file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set mirror file permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace mirror file '%s': %w", s.path, err)
	}
	return nil
}
