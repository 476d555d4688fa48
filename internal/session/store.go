package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Sentinel errors
var (
	// ErrKeyNotFound is returned when a stored value doesn't exist.
	ErrKeyNotFound = errors.New("key not found")
)

// Storage keys. The legacy user_id key duplicates the id inside the
// serialized user record; it is still written for sessions created by
// older releases but nothing reads it back.
const (
	accessTokenKey  = "access_token"
	refreshTokenKey = "refresh_token"
	userKey         = "user"
	legacyUserIDKey = "user_id"
)

// storeFile is the session state file inside the base directory.
const storeFile = "session.json"

type storeData struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// Store is durable string key-value persistence for session credentials.
// Writes are last-write-wins with no locking; concurrent logical
// operations may overwrite each other, which is harmless because every
// writer derives its value from the same stored refresh token.
type Store struct {
	baseDir string
}

// NewStore creates a session store rooted at baseDir.
// If baseDir is empty, uses ~/.ocontest/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".ocontest")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store := &Store{baseDir: baseDir}

	if err := store.ensureData(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("session store initialized")

	return store, nil
}

// BaseDir returns the state directory, used to place adjacent caches.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Get retrieves a stored value by key.
func (s *Store) Get(key string) (string, error) {
	data, err := s.load()
	if err != nil {
		return "", err
	}

	value, ok := data.Values[key]
	if !ok {
		return "", ErrKeyNotFound
	}

	return value, nil
}

// Set stores a value under key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	data.Values[key] = value

	return s.save(data)
}

// Remove deletes a stored value. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	delete(data.Values, key)

	return s.save(data)
}

// ensureData creates an empty state file if it doesn't exist.
func (s *Store) ensureData() error {
	path := filepath.Join(s.baseDir, storeFile)

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return s.save(&storeData{
		Version: 1,
		Values:  make(map[string]string),
	})
}

// load reads the state file.
func (s *Store) load() (*storeData, error) {
	path := filepath.Join(s.baseDir, storeFile)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse session state: %w", err)
	}

	if data.Values == nil {
		data.Values = make(map[string]string)
	}

	return &data, nil
}

// save writes the state file atomically. Tokens live here, so the file
// stays owner-readable only.
func (s *Store) save(data *storeData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	path := filepath.Join(s.baseDir, storeFile)
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, raw, 0600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save session state: %w", err)
	}

	return nil
}
