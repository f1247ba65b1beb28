package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the identifier used for all flowcanvas secrets in the system keyring.
	ServiceName = "flowcanvas"

	indexKey = "__flowcanvas_index__"
)

// KeyringStore implements KeyValueStore using the system keyring.
// - macOS: Uses Keychain
// - Windows: Uses Credential Manager
// - Linux: Uses Secret Service (GNOME Keyring, KWallet)
type KeyringStore struct {
	service string
}

// NewKeyringStore creates a new keyring-based store.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{service: ServiceName}
}

// Set stores a secret in the system keyring.
// The key is used as the account name, and value is the password.
func (s *KeyringStore) Set(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("credential key cannot be empty")
	}

	if err := keyring.Set(s.service, key, string(value)); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	// The secret is stored even if the index update fails
	_ = s.addToIndex(key)
	return nil
}

// Get retrieves a secret from the system keyring.
func (s *KeyringStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("credential key cannot be empty")
	}

	value, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to retrieve credential: %w", err)
	}

	return []byte(value), nil
}

// Remove deletes a secret from the system keyring.
func (s *KeyringStore) Remove(key string) error {
	if key == "" {
		return fmt.Errorf("credential key cannot be empty")
	}

	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	_ = s.removeFromIndex(key)
	return nil
}

// List returns every key stored by flowcanvas (not the values).
// The index lives in its own keyring entry.
func (s *KeyringStore) List() ([]string, error) {
	indexJSON, err := keyring.Get(s.service, indexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to retrieve credential index: %w", err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(indexJSON), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse credential index: %w", err)
	}

	return keys, nil
}

func (s *KeyringStore) addToIndex(key string) error {
	keys, err := s.List()
	if err != nil {
		return err
	}

	for _, k := range keys {
		if k == key {
			return nil
		}
	}

	return s.saveIndex(append(keys, key))
}

func (s *KeyringStore) removeFromIndex(key string) error {
	keys, err := s.List()
	if err != nil {
		return err
	}

	newKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != key {
			newKeys = append(newKeys, k)
		}
	}

	return s.saveIndex(newKeys)
}

func (s *KeyringStore) saveIndex(keys []string) error {
	indexJSON, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal credential index: %w", err)
	}

	if err := keyring.Set(s.service, indexKey, string(indexJSON)); err != nil {
		return fmt.Errorf("failed to save credential index: %w", err)
	}

	return nil
}
