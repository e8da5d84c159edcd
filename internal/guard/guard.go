// Package guard gates access to role-specific page trees. Decisions are pure
// and synchronous: they read only the in-memory session snapshot and never
// touch the network or the persisted store.
package guard

import (
	"farmgate/internal/logging"
	"farmgate/internal/session"
	"farmgate/internal/types"
)

// Redirect targets for denied navigation.
const (
	RedirectLogin = "/login"
	RedirectHome  = "/"
)

// RoleSet is the set of roles allowed into a route subtree. An empty set
// admits any authenticated session.
type RoleSet map[types.Role]bool

// Roles builds a RoleSet.
func Roles(roles ...types.Role) RoleSet {
	rs := make(RoleSet, len(roles))
	for _, r := range roles {
		rs[r] = true
	}
	return rs
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool

	// Redirect is the navigation target when denied: the login entry point
	// for unauthenticated sessions, the anonymous home for wrong-role ones.
	Redirect string
}

// Allow decides whether the session may enter a subtree requiring the given
// roles.
func Allow(sess session.Session, required RoleSet) Decision {
	if !sess.State.Authenticated() {
		return Decision{Allowed: false, Redirect: RedirectLogin}
	}
	if len(required) == 0 {
		return Decision{Allowed: true}
	}
	if required[sess.Role] {
		return Decision{Allowed: true}
	}
	logging.Guard("Denied %s (role=%s) for required set %v", sess.Email, sess.Role, required)
	return Decision{Allowed: false, Redirect: RedirectHome}
}

// Route tables for the two page trees. The farmer tree also admits an
// unresolved multi-role session so it can reach the role chooser.
var (
	FarmerRoutes   = Roles(types.RoleFarmer, types.RoleMulti)
	CustomerRoutes = Roles(types.RoleCustomer, types.RoleMulti)
	AccountRoutes  = RoleSet{} // any authenticated session
)
