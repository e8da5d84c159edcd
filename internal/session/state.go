// Package session owns the in-memory representation of "current user" and the
// role state machine around it. The Manager is the only writer of session
// state and of the auth-derived persisted entries; pages and the route guard
// hold read-only copies.
package session

import (
	"errors"

	"farmgate/internal/types"
)

// State is the session lifecycle position.
type State string

const (
	// StateAnonymous is the default state: no identity.
	StateAnonymous State = "anonymous"

	// StateAuthenticating covers the transient rehydration fetch.
	StateAuthenticating State = "authenticating"

	// StateSingleRole is an authenticated user holding exactly one role.
	StateSingleRole State = "authenticated-single-role"

	// StateMultiUnresolved is an authenticated dual-identity user who has
	// not chosen a role this session.
	StateMultiUnresolved State = "authenticated-multi-unresolved"

	// StateMultiResolved is a dual-identity user with an active role chosen.
	StateMultiResolved State = "authenticated-multi-resolved"
)

// Authenticated reports whether the state carries a confirmed identity.
func (s State) Authenticated() bool {
	switch s {
	case StateSingleRole, StateMultiUnresolved, StateMultiResolved:
		return true
	}
	return false
}

// Session is a read-only snapshot of the current identity. Role is only
// meaningful when Email is set, and is always consistent with the matching
// has_* flag because types.ResolveRole is the sole derivation path.
type Session struct {
	Email       string
	Name        string
	Role        types.Role
	HasFarmer   bool
	HasCustomer bool
	State       State
}

// Anonymous reports whether the session carries no identity.
func (s Session) Anonymous() bool {
	return !s.State.Authenticated()
}

var (
	// ErrNotAuthenticated is returned for protected actions without a session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrRoleUnavailable is returned when switching to a role the account
	// does not hold.
	ErrRoleUnavailable = errors.New("role not available on this account")

	// ErrRoleUnresolved is returned for role-gated actions while a
	// dual-identity user has not picked a role.
	ErrRoleUnresolved = errors.New("role selection required")

	// ErrUpgradeUnavailable means second-role auto-registration is disabled
	// because no upgrade token is stored; the caller should fall back to a
	// fresh registration with password entry.
	ErrUpgradeUnavailable = errors.New("second-role registration unavailable: sign in again to refresh your upgrade token")
)
