package ux

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"farmgate/internal/types"
)

// PreferencesVersion is the current schema version for preferences.json.
const PreferencesVersion = "1.0"

// Preferences is the persisted CLI preferences schema. It holds convenience
// state only - never credentials.
type Preferences struct {
	// Version is the schema version for migration detection
	Version string `json:"version"`

	// RememberedEmail prefills the login prompt
	RememberedEmail string `json:"remembered_email,omitempty"`

	// PreferredRole is the role to suggest when a dual-identity user must
	// choose one
	PreferredRole types.Role `json:"preferred_role,omitempty"`

	// PlainOutput disables styled notification output
	PlainOutput bool `json:"plain_output,omitempty"`
}

// PreferencesStore loads and saves preferences under the state directory.
type PreferencesStore struct {
	path string
	mu   sync.Mutex
}

// NewPreferencesStore creates a store at dir/preferences.json.
func NewPreferencesStore(dir string) *PreferencesStore {
	return &PreferencesStore{path: filepath.Join(dir, "preferences.json")}
}

// Load reads preferences, returning defaults when the file is missing or
// unreadable. A version mismatch resets to defaults rather than guessing at
// migration.
func (ps *PreferencesStore) Load() *Preferences {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	defaults := &Preferences{Version: PreferencesVersion}

	data, err := os.ReadFile(ps.path)
	if err != nil {
		return defaults
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaults
	}
	if prefs.Version != PreferencesVersion {
		return defaults
	}
	return &prefs
}

// Save writes preferences to disk.
func (ps *PreferencesStore) Save(prefs *Preferences) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	prefs.Version = PreferencesVersion
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(ps.path), 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	return os.WriteFile(ps.path, data, 0644)
}
