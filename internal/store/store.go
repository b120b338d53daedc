// ABOUTME: Durable, scoped key-value store for session credentials and preferences
// ABOUTME: Persists a JSON document per scope under the XDG config directory

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys shared by the session and preference layers.
const (
	KeyAccessToken  = "spendx_access_token"
	KeyRefreshToken = "spendx_refresh_token"
	KeyUser         = "spendx_user"
	KeyCurrency     = "spendx_currency"
	KeyLanguage     = "spendx_language"
)

// CredentialKeys returns the keys that make up a persisted session.
func CredentialKeys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyUser}
}

// Store is durable key-value persistence. A missing key is not an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	RemoveMany(keys ...string) error
}

// ErrStorage is matched by every StorageError.
var ErrStorage = errors.New("credential storage unavailable")

// StorageError reports a failed read or write of the underlying storage.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports ErrStorage so callers can match without a type assertion.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// FileStore keeps one JSON document per scope. Every call goes to disk.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

type document struct {
	Values map[string]string `json:"values"`
}

// NewFileStore returns a store rooted at configDir/scope.
func NewFileStore(configDir, scope string) *FileStore {
	return &FileStore{dir: filepath.Join(configDir, scope)}
}

// Path returns the location of the backing file.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, "credentials.json")
}

// Get returns the stored value, or false if the key was never set.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

// Set overwrites key and returns once the write is on disk.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	doc.Values[key] = value
	if err := s.write(doc); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Remove deletes key. Removing an absent key succeeds.
func (s *FileStore) Remove(key string) error {
	return s.RemoveMany(key)
}

// RemoveMany deletes every key in one write.
func (s *FileStore) RemoveMany(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return &StorageError{Op: "remove", Err: err}
	}

	changed := false
	for _, k := range keys {
		if _, ok := doc.Values[k]; ok {
			delete(doc.Values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := s.write(doc); err != nil {
		return &StorageError{Op: "remove", Err: err}
	}
	return nil
}

func (s *FileStore) read() (*document, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return &document{Values: map[string]string{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("corrupt credentials file: %w", err)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return &doc, nil
}

// write replaces the file atomically: temp file, fsync, rename.
func (s *FileStore) write(doc *document) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".credentials-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path())
}
