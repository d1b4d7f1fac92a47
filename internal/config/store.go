// Package config provides persisted user state: theme, volume, favorites
// and the cookie-consent flag, all behind an injected key-value Store so
// consumers never touch ambient storage directly.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the state directory relative to the user's home.
	ConfigDir = ".config/sonicwave"
	// StateFileName is the key-value state file inside ConfigDir.
	StateFileName = "state.yml"
)

// Store is the persistence port. Implementations must be safe for
// concurrent use. Subscribers are notified with the key after every
// successful Set.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Subscribe(fn func(key string))
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]string
	subs []func(string)

	// SetErr, when non-nil, is returned by every Set. Lets tests exercise
	// persistence failures.
	SetErr error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

func (m *MemStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	if m.SetErr != nil {
		m.mu.Unlock()
		return m.SetErr
	}
	m.data[key] = value
	subs := make([]func(string), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

func (m *MemStore) Subscribe(fn func(key string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// FileStore persists the key-value state as a YAML map, saved atomically on
// every Set via temp file + rename.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]string
	subs []func(string)
}

// StatePath returns the default on-disk location of the state file.
func StatePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ConfigDir, StateFileName), nil
}

// NewFileStore loads (or initializes) a file-backed store at path. A missing
// file is not an error; it is created on first Set.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: map[string]string{},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := yaml.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if fs.data == nil {
		fs.data = map[string]string{}
	}
	return fs, nil
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	f.mu.Lock()
	f.data[key] = value
	if err := f.saveLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	subs := make([]func(string), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(key)
	}
	return nil
}

func (f *FileStore) Subscribe(fn func(key string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
}

func (f *FileStore) saveLocked() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	raw, err := yaml.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(raw); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to rename state file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}
