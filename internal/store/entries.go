package store

import (
	"encoding/json"
	"time"

	"farmgate/internal/logging"
	"farmgate/internal/types"
)

// SnapshotVersion is the current schema version for the cached user snapshot.
const SnapshotVersion = 1

// Snapshot is the cached user profile written after every user-info fetch so
// a reload before the next network round-trip still shows correct name/role.
type Snapshot struct {
	Version int        `json:"version"`
	User    types.User `json:"user"`
	SavedAt time.Time  `json:"saved_at"`
}

// Token returns the persisted bearer token.
func (s *LocalStore) Token() (string, bool) {
	return s.Get(KeyAuthToken)
}

// SetToken persists the bearer token.
func (s *LocalStore) SetToken(token string) error {
	return s.Set(KeyAuthToken, token)
}

// Role returns the persisted active role. An unknown stored value is treated
// as absent.
func (s *LocalStore) Role() (types.Role, bool) {
	v, ok := s.Get(KeyCurrentRole)
	if !ok {
		return "", false
	}
	role := types.Role(v)
	if !role.Valid() {
		logging.Get(logging.CategoryStore).Warn("Discarding unknown persisted role %q", v)
		return "", false
	}
	return role, true
}

// SetRole persists the active role.
func (s *LocalStore) SetRole(role types.Role) error {
	return s.Set(KeyCurrentRole, string(role))
}

// Snapshot returns the cached user snapshot. A malformed or version-skewed
// snapshot is treated as absent, logged, never fatal.
func (s *LocalStore) Snapshot() (Snapshot, bool) {
	v, ok := s.Get(KeyUserData)
	if !ok {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(v), &snap); err != nil {
		logging.Get(logging.CategoryStore).Warn("Discarding malformed user snapshot: %v", err)
		return Snapshot{}, false
	}
	if snap.Version != SnapshotVersion {
		logging.Get(logging.CategoryStore).Warn("Discarding user snapshot with version %d (want %d)", snap.Version, SnapshotVersion)
		return Snapshot{}, false
	}
	return snap, true
}

// SetSnapshot persists the cached user snapshot.
func (s *LocalStore) SetSnapshot(u types.User) error {
	snap := Snapshot{
		Version: SnapshotVersion,
		User:    u,
		SavedAt: time.Now(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Set(KeyUserData, string(data))
}

// UpgradeToken returns the short-lived role-upgrade token issued at login.
// Its absence disables second-role auto-registration; it never holds a
// password.
func (s *LocalStore) UpgradeToken() (string, bool) {
	return s.Get(KeyUpgradeToken)
}

// SetUpgradeToken persists the role-upgrade token.
func (s *LocalStore) SetUpgradeToken(token string) error {
	return s.Set(KeyUpgradeToken, token)
}

// PurgeAuth removes all token-derived entries: token, role, snapshot, and
// upgrade token. The cart is left untouched; callers that also want the cart
// gone (logout) clear it explicitly.
func (s *LocalStore) PurgeAuth() error {
	logging.Store("Purging auth entries")
	for _, key := range []string{KeyAuthToken, KeyCurrentRole, KeyUserData, KeyUpgradeToken} {
		if err := s.Remove(key); err != nil {
			return err
		}
	}
	return nil
}
