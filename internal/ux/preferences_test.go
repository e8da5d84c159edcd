package ux

import (
	"os"
	"path/filepath"
	"testing"

	"farmgate/internal/types"
)

func TestPreferencesDefaultsWhenMissing(t *testing.T) {
	ps := NewPreferencesStore(t.TempDir())

	prefs := ps.Load()
	if prefs.Version != PreferencesVersion {
		t.Errorf("Version = %q", prefs.Version)
	}
	if prefs.RememberedEmail != "" || prefs.PreferredRole != "" {
		t.Errorf("missing file should yield empty defaults: %+v", prefs)
	}
}

func TestPreferencesRoundtrip(t *testing.T) {
	dir := t.TempDir()
	ps := NewPreferencesStore(dir)

	prefs := ps.Load()
	prefs.RememberedEmail = "ada@farm.io"
	prefs.PreferredRole = types.RoleFarmer
	if err := ps.Save(prefs); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewPreferencesStore(dir).Load()
	if loaded.RememberedEmail != "ada@farm.io" {
		t.Errorf("RememberedEmail = %q", loaded.RememberedEmail)
	}
	if loaded.PreferredRole != types.RoleFarmer {
		t.Errorf("PreferredRole = %q", loaded.PreferredRole)
	}
}

func TestPreferencesMalformedResets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preferences.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	prefs := NewPreferencesStore(dir).Load()
	if prefs.RememberedEmail != "" {
		t.Errorf("malformed file should reset to defaults: %+v", prefs)
	}
}

func TestPreferencesVersionSkewResets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preferences.json")
	if err := os.WriteFile(path, []byte(`{"version":"0.9","remembered_email":"old@x.y"}`), 0644); err != nil {
		t.Fatal(err)
	}

	prefs := NewPreferencesStore(dir).Load()
	if prefs.RememberedEmail != "" {
		t.Error("version skew should discard old preferences")
	}
}
