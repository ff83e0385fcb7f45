// Package store persists small durable values to disk.
package store

import (
	"path/filepath"
	"sync"

	"rektlink/internal/domain"
)

const kvFilename = "slots.json"

// Well-known slot names.
const (
	SlotAuthSignature    = "auth_signature"
	SlotBiometricEnabled = "biometric_enabled"
)

// FileStore is a durable key-value store backed by a single JSON file.
// It is the handoff surface for state that must survive the host app
// being suspended mid-flow.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// Get reads the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := map[string]string{}
	if err := readJSON(s.path(), &slots); err != nil {
		return "", false, err
	}
	v, ok := slots[key]
	return v, ok, nil
}

// Set writes value under key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := map[string]string{}
	if err := readJSON(s.path(), &slots); err != nil {
		return err
	}
	slots[key] = value
	return writeJSON(s.path(), slots, 0o600)
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := map[string]string{}
	if err := readJSON(s.path(), &slots); err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	return writeJSON(s.path(), slots, 0o600)
}

func (s *FileStore) path() string { return filepath.Join(s.dir, kvFilename) }

// Compile-time assertion that FileStore implements domain.KVStore.
var _ domain.KVStore = (*FileStore)(nil)
