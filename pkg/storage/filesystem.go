package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore implements KeyValueStore with one file per key.
// Values are stored in ~/.flowcanvas/data/<key>.json by default.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a store under ~/.flowcanvas/data
func NewFileStore() (*FileStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewFileStoreWithPath(filepath.Join(homeDir, ".flowcanvas"))
}

// NewFileStoreWithPath creates a store with a custom base directory.
// Useful for testing or custom configurations.
func NewFileStoreWithPath(baseDir string) (*FileStore, error) {
	dataDir := filepath.Join(baseDir, "data")

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileStore{baseDir: dataDir}, nil
}

// Dir returns the directory holding the value files
func (s *FileStore) Dir() string {
	return s.baseDir
}

// Get reads the value stored under key
func (s *FileStore) Get(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read value file: %w", err)
	}
	return data, nil
}

// Set writes the value atomically using a temp file + rename
func (s *FileStore) Set(key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	filePath := s.keyPath(key)
	tempPath := filePath + ".tmp"

	if err := os.WriteFile(tempPath, value, 0644); err != nil {
		return fmt.Errorf("failed to write value file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		// Clean up temp file on failure
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to save value file: %w", err)
	}

	return nil
}

// Remove deletes the file for key
func (s *FileStore) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	if err := os.Remove(s.keyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete value file: %w", err)
	}
	return nil
}

// keyPath returns the full filesystem path for a key
func (s *FileStore) keyPath(key string) string {
	return filepath.Join(s.baseDir, key+".json")
}
