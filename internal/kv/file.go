package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists each key as one file under a data directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a torn value behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a
// FileStore rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get returns the value for key.
func (s *FileStore) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set persists value under key atomically.
func (s *FileStore) Set(key, value string) error {
	target := s.path(key)

	tmp, err := os.CreateTemp(s.dir, "."+s.fileName(key)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *FileStore) Remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, s.fileName(key))
}

// fileName maps a key to a safe file name. Keys are dotted identifiers
// like "sync.pending_mutations"; anything path-like is flattened.
func (s *FileStore) fileName(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return safe + ".json"
}
