package session

import (
	"context"
	"fmt"
	"sync"

	"farmgate/internal/api"
	"farmgate/internal/logging"
	"farmgate/internal/store"
	"farmgate/internal/types"
)

// Manager is the session/role state machine. All session mutations funnel
// through it; every transition that changes identity or role re-writes the
// cached snapshot entry so a reload before the next round-trip still shows
// correct name/role.
type Manager struct {
	mu     sync.RWMutex
	store  *store.LocalStore
	client *api.Client

	sess Session

	// gen is bumped on logout and on 401 so an in-flight rehydration that
	// completes afterwards discards its response instead of resurrecting a
	// dead session.
	gen uint64
}

// NewManager creates a manager over the given store and API client and wires
// itself into the client's 401 hook.
func NewManager(st *store.LocalStore, client *api.Client) *Manager {
	m := &Manager{
		store:  st,
		client: client,
		sess:   Session{State: StateAnonymous},
	}
	client.OnUnauthorized(m.handleUnauthorized)
	return m
}

// Current returns a copy of the session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess.State
}

// Hydrate restores the session from the persisted store at startup. With no
// token it settles on Anonymous immediately. With one it enters
// Authenticating, confirms the token against the user-info endpoint, and
// reconciles roles; a failed fetch purges all token-derived entries.
func (m *Manager) Hydrate(ctx context.Context) error {
	token, ok := m.store.Token()
	if !ok || token == "" {
		m.setAnonymous()
		return nil
	}

	m.mu.Lock()
	m.sess = Session{State: StateAuthenticating}
	if snap, ok := m.store.Snapshot(); ok {
		// Show the cached identity while the fetch is in flight.
		m.sess.Email = snap.User.Email
		m.sess.Name = snap.User.Name
	}
	gen := m.gen
	m.mu.Unlock()

	logging.Session("Hydrating session from persisted token")

	u, err := m.client.UserInfo(ctx)
	if err != nil {
		// A 401 already purged and reset us via the hook; anything else
		// (expired token surfacing differently, network death mid-boot)
		// gets the same treatment locally.
		logging.Get(logging.CategorySession).Warn("Rehydration fetch failed: %v", err)
		m.mu.Lock()
		stale := m.gen != gen
		m.mu.Unlock()
		if !stale {
			if perr := m.store.PurgeAuth(); perr != nil {
				logging.Get(logging.CategorySession).Error("Purge after failed rehydration: %v", perr)
			}
			m.setAnonymous()
		}
		return fmt.Errorf("session rehydration failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		// Logged out while the fetch was in flight; the response is stale.
		logging.Session("Discarding stale rehydration response")
		return nil
	}
	return m.reconcileLocked(u)
}

// Login authenticates, persists the token (done inside the access layer),
// and reconciles roles through the same fetch path as rehydration.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := ValidateLogin(email, password); err != nil {
		return err
	}

	if _, err := m.client.Login(ctx, email, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	u, err := m.client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("login succeeded but profile fetch failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	logging.Session("Login: %s", email)
	return m.reconcileLocked(u)
}

// Register creates a new account with the given concrete role and
// reconciles the session.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest, passwordConfirm string) error {
	if err := ValidateRegistration(req, passwordConfirm); err != nil {
		return err
	}

	if _, err := m.client.Register(ctx, req); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	u, err := m.client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("registration succeeded but profile fetch failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	logging.Session("Registered: %s as %s", req.Email, req.Role)
	return m.reconcileLocked(u)
}

// Logout notifies the server best-effort, then unconditionally clears local
// state. Network failure never blocks logout.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		logging.Get(logging.CategorySession).Warn("Server logout failed (ignored): %v", err)
	}

	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	if err := m.store.PurgeAuth(); err != nil {
		logging.Get(logging.CategorySession).Error("Auth purge on logout: %v", err)
	}
	if err := m.store.ClearCart(); err != nil {
		logging.Get(logging.CategorySession).Error("Cart clear on logout: %v", err)
	}
	m.setAnonymous()
	logging.Session("Logged out")
}

// SelectRole resolves a dual-identity session onto one role: the server
// reissues a role-scoped token, the role is persisted, and the state moves to
// MultiResolved.
func (m *Manager) SelectRole(ctx context.Context, role types.Role) error {
	m.mu.RLock()
	sess := m.sess
	m.mu.RUnlock()

	if !sess.State.Authenticated() {
		return ErrNotAuthenticated
	}
	if err := roleHeld(sess, role); err != nil {
		return err
	}

	if err := m.client.SwitchAccount(ctx, role); err != nil {
		return fmt.Errorf("role selection failed: %w", err)
	}

	return m.adoptRole(role)
}

// SwitchRole changes the active role without a fresh login. Only users
// holding both identities may switch.
func (m *Manager) SwitchRole(ctx context.Context, role types.Role) error {
	m.mu.RLock()
	sess := m.sess
	m.mu.RUnlock()

	if !sess.State.Authenticated() {
		return ErrNotAuthenticated
	}
	if !sess.HasFarmer || !sess.HasCustomer {
		return ErrRoleUnavailable
	}
	if err := roleHeld(sess, role); err != nil {
		return err
	}
	if sess.Role == role {
		return nil
	}

	if err := m.client.SwitchAccount(ctx, role); err != nil {
		return fmt.Errorf("role switch failed: %w", err)
	}

	return m.adoptRole(role)
}

// RegisterSecondRole registers the complementary role for the current
// account using the stored upgrade token. Without one the feature is
// disabled, not broken: callers get ErrUpgradeUnavailable to surface.
func (m *Manager) RegisterSecondRole(ctx context.Context) error {
	m.mu.RLock()
	sess := m.sess
	m.mu.RUnlock()

	if !sess.State.Authenticated() {
		return ErrNotAuthenticated
	}
	if sess.HasFarmer && sess.HasCustomer {
		return fmt.Errorf("account already holds both roles")
	}

	second, ok := sess.Role.Complement()
	if !ok {
		return ErrRoleUnresolved
	}

	upgrade, ok := m.store.UpgradeToken()
	if !ok || upgrade == "" {
		return ErrUpgradeUnavailable
	}

	req := api.RegisterRequest{
		Email:        sess.Email,
		Name:         sess.Name,
		Role:         second,
		UpgradeToken: upgrade,
	}
	if _, err := m.client.Register(ctx, req); err != nil {
		return fmt.Errorf("second-role registration failed: %w", err)
	}

	u, err := m.client.UserInfo(ctx)
	if err != nil {
		return fmt.Errorf("second role registered but profile fetch failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	logging.Session("Second role registered for %s: %s", sess.Email, second)
	return m.reconcileLocked(u)
}

// reconcileLocked maps a fetched profile onto session state and echoes it to
// the persisted store. Caller holds m.mu.
func (m *Manager) reconcileLocked(u types.User) error {
	cached, _ := m.store.Role()
	role, resolved := types.ResolveRole(u, cached)

	sess := Session{
		Email:       u.Email,
		Name:        u.Name,
		HasFarmer:   u.HasFarmer,
		HasCustomer: u.HasCustomer,
	}

	switch {
	case !resolved && role == types.RoleMulti:
		sess.Role = types.RoleMulti
		sess.State = StateMultiUnresolved
	case resolved && u.HasFarmer && u.HasCustomer:
		sess.Role = role
		sess.State = StateMultiResolved
	case resolved:
		sess.Role = role
		sess.State = StateSingleRole
	default:
		// Profile with neither flag set: treat as anonymous rather than
		// invent a role.
		logging.Get(logging.CategorySession).Warn("Profile for %s holds no roles", u.Email)
		m.sess = Session{State: StateAnonymous}
		return m.store.PurgeAuth()
	}

	m.sess = sess

	if resolved {
		if err := m.store.SetRole(role); err != nil {
			return err
		}
	}
	u.Role = sess.Role
	if err := m.store.SetSnapshot(u); err != nil {
		return err
	}

	logging.Session("Session reconciled: %s role=%s state=%s", sess.Email, sess.Role, sess.State)
	return nil
}

// adoptRole installs a concrete role after the server reissued a token for
// it, persisting role and snapshot.
func (m *Manager) adoptRole(role types.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess.Role = role
	m.sess.State = StateSingleRole
	if m.sess.HasFarmer && m.sess.HasCustomer {
		m.sess.State = StateMultiResolved
	}

	if err := m.store.SetRole(role); err != nil {
		return err
	}
	return m.store.SetSnapshot(types.User{
		Email:       m.sess.Email,
		Name:        m.sess.Name,
		Role:        role,
		HasFarmer:   m.sess.HasFarmer,
		HasCustomer: m.sess.HasCustomer,
	})
}

// handleUnauthorized drops the in-memory session after the access layer
// purged the persisted entries on a 401. The cart is left alone.
func (m *Manager) handleUnauthorized() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.sess = Session{State: StateAnonymous}
	logging.Session("Session reset after 401")
}

func (m *Manager) setAnonymous() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{State: StateAnonymous}
}

// roleHeld checks the requested role against the account's has_* flags.
func roleHeld(sess Session, role types.Role) error {
	switch role {
	case types.RoleFarmer:
		if !sess.HasFarmer {
			return ErrRoleUnavailable
		}
	case types.RoleCustomer:
		if !sess.HasCustomer {
			return ErrRoleUnavailable
		}
	default:
		return fmt.Errorf("cannot activate role %q", role)
	}
	return nil
}
