// Package session owns the client's authenticated-identity state: who is
// logged in, with what role, and whether that state has been verified.
//
// The Manager is the single writer of the credential store. Consumers read
// state through Snapshot and Subscribe; they never mutate it directly.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/quizhub/quizctl/internal/api"
	"github.com/quizhub/quizctl/internal/dependencies/clock"
	"github.com/quizhub/quizctl/internal/model"
	"github.com/quizhub/quizctl/internal/storage"
	"github.com/quizhub/quizctl/internal/token"
)

// Snapshot is a read-only view of the session state. User and
// Authenticated always change together.
type Snapshot struct {
	User          *model.User
	Authenticated bool
	Loading       bool
}

// Result is the structured outcome of a login or registration attempt
type Result struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user,omitempty"`

	// Lockout metadata, set when the account is rate-limit blocked
	Blocked          bool   `json:"blocked,omitempty"`
	BlockedUntil     string `json:"blocked_until,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`

	// AttemptsLeft counts down to a lockout on rejected credentials;
	// nil when the backend did not report it
	AttemptsLeft *int `json:"attempts_left,omitempty"`

	// Error is a human-readable failure message; empty on success
	Error string `json:"error,omitempty"`
}

// Manager is the process-wide source of truth for session state
type Manager struct {
	store  storage.Store
	client *api.Client
	clock  clock.Clock
	logger *slog.Logger

	mu            sync.RWMutex
	user          *model.User
	authenticated bool
	loading       bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a session manager. The session is loading until Restore runs.
func New(store storage.Store, client *api.Client, clk clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		client:  client,
		clock:   clk,
		logger:  logger.With(slog.String("component", "session")),
		loading: true,
		subs:    make(map[int]func(Snapshot)),
	}
}

// Snapshot returns the current session state
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{User: m.user, Authenticated: m.authenticated, Loading: m.loading}
}

// CurrentUser returns the authenticated user, or nil
func (m *Manager) CurrentUser() *model.User {
	return m.Snapshot().User
}

// IsAuthenticated reports whether the session holds a verified identity
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().Authenticated
}

// Subscribe registers a callback invoked on every state change, in
// registration order. The returned function unsubscribes it.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

// setState applies a state mutation as a single observable update and
// notifies subscribers after the lock is released
func (m *Manager) setState(user *model.User, authenticated, loading bool) {
	m.mu.Lock()
	m.user = user
	m.authenticated = authenticated
	m.loading = loading
	snap := Snapshot{User: user, Authenticated: authenticated, Loading: loading}
	m.mu.Unlock()

	m.subMu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	// Map iteration order is random; notify in registration order
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.subs[id])
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Restore rebuilds session state from the credential store at boot.
// Invalid or undecodable persisted state is discarded. The loading flag
// drops exactly once, on every path.
func (m *Manager) Restore(ctx context.Context) Snapshot {
	access, err := m.store.AccessToken(ctx)
	if err != nil {
		m.logger.Warn("failed to read stored token", slog.String("error", err.Error()))
		m.discardCredentials(ctx)
		m.setState(nil, false, false)
		return m.Snapshot()
	}

	userJSON, err := m.store.UserJSON(ctx)
	if err != nil {
		m.logger.Warn("failed to read stored user", slog.String("error", err.Error()))
		m.discardCredentials(ctx)
		m.setState(nil, false, false)
		return m.Snapshot()
	}

	if access == "" || len(userJSON) == 0 {
		m.setState(nil, false, false)
		return m.Snapshot()
	}

	if !token.IsValid(access, m.clock) {
		m.logger.Info("stored token invalid or expired, clearing credentials")
		m.discardCredentials(ctx)
		m.setState(nil, false, false)
		return m.Snapshot()
	}

	user := &model.User{}
	if err := json.Unmarshal(userJSON, user); err != nil {
		m.logger.Warn("stored user record undecodable, clearing credentials",
			slog.String("error", err.Error()))
		m.discardCredentials(ctx)
		m.setState(nil, false, false)
		return m.Snapshot()
	}

	m.client.SetToken(access)
	m.setState(user, true, false)
	m.logger.Info("session restored", slog.String("email", user.Email))
	return m.Snapshot()
}

// Login authenticates with the backend. All failures come back as a
// structured Result; the session never ends up partially authenticated.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		return m.loginFailure(err, "login failed")
	}

	if resp.AccessToken == "" || resp.User == nil {
		return Result{Success: false, Error: "login failed"}
	}

	if err := m.persistLogin(ctx, resp); err != nil {
		m.logger.Warn("failed to persist credentials", slog.String("error", err.Error()))
		// In-memory session still works for this process
	}

	m.client.SetToken(resp.AccessToken)
	m.setState(resp.User, true, false)
	m.logger.Info("logged in", slog.String("email", resp.User.Email),
		slog.String("role", string(resp.User.Role)))

	return Result{Success: true, User: resp.User}
}

// Register creates an account; success authenticates the caller immediately
func (m *Manager) Register(ctx context.Context, req *api.RegisterRequest) Result {
	resp, err := m.client.Register(ctx, req)
	if err != nil {
		return m.loginFailure(err, "registration failed")
	}

	if resp.AccessToken == "" || resp.User == nil {
		return Result{Success: false, Error: "registration failed"}
	}

	if err := m.persistLogin(ctx, resp); err != nil {
		m.logger.Warn("failed to persist credentials", slog.String("error", err.Error()))
	}

	m.client.SetToken(resp.AccessToken)
	m.setState(resp.User, true, false)
	m.logger.Info("registered", slog.String("email", resp.User.Email))

	return Result{Success: true, User: resp.User}
}

// Logout best-effort notifies the backend, then unconditionally clears
// persisted and in-memory state. Network failure is swallowed.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		m.logger.Warn("server logout failed, clearing local state anyway",
			slog.String("error", err.Error()))
	}

	m.discardCredentials(ctx)
	m.client.SetToken("")
	m.setState(nil, false, false)
	m.logger.Info("logged out")
}

// UpdateProfile submits a partial update and adopts the server's canonical
// record. This is the one operation that propagates errors: silent failure
// would leave callers believing a stale record was saved.
func (m *Manager) UpdateProfile(ctx context.Context, patch *model.UserPatch) (*model.User, error) {
	user, err := m.client.UpdateProfile(ctx, patch)
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			// Token no longer accepted; the session is over
			m.discardCredentials(ctx)
			m.client.SetToken("")
			m.setState(nil, false, false)
		}
		return nil, err
	}
	if user == nil {
		return nil, errors.New("backend returned no user record")
	}

	userJSON, err := json.Marshal(user)
	if err == nil {
		if err := m.store.SaveUser(ctx, userJSON); err != nil {
			m.logger.Warn("failed to persist updated user", slog.String("error", err.Error()))
		}
	}

	m.setState(user, true, false)
	return user, nil
}

// Refresh exchanges the stored refresh token for a new access token
func (m *Manager) Refresh(ctx context.Context) error {
	refresh, err := m.store.RefreshToken(ctx)
	if err != nil {
		return err
	}
	if refresh == "" {
		return model.ErrNoRefreshToken
	}

	resp, err := m.client.RefreshToken(ctx, refresh)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return model.ErrInvalidToken
	}

	if err := m.store.SaveAccessToken(ctx, resp.AccessToken); err != nil {
		return err
	}
	m.client.SetToken(resp.AccessToken)
	m.logger.Info("access token refreshed")
	return nil
}

// HasRole is the strict role policy: administrators satisfy everything,
// any other role only its own requirement. The route gate uses the
// hierarchy policy in package authz instead; the two are deliberately
// kept separate because they disagree for moderators.
func (m *Manager) HasRole(required model.Role) bool {
	user := m.CurrentUser()
	if user == nil {
		return false
	}
	if user.Role == model.RoleAdministrator {
		return true
	}
	return user.Role == required
}

// loginFailure normalizes an API or transport error into a Result
func (m *Manager) loginFailure(err error, generic string) Result {
	if apiErr, ok := api.AsAPIError(err); ok {
		if apiErr.Blocked {
			return Result{
				Blocked:          true,
				BlockedUntil:     apiErr.BlockedUntil,
				RemainingSeconds: apiErr.RemainingSeconds,
				Error:            apiErr.Message,
			}
		}
		return Result{AttemptsLeft: apiErr.AttemptsLeft, Error: apiErr.Message}
	}

	m.logger.Warn("auth request failed", slog.String("error", err.Error()))
	return Result{Error: generic}
}

// persistLogin writes a login result to the store; the store guarantees
// the token lands before the user record
func (m *Manager) persistLogin(ctx context.Context, resp *api.LoginResponse) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}
	return m.store.SaveCredentials(ctx, resp.AccessToken, resp.RefreshToken, userJSON)
}

func (m *Manager) discardCredentials(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear credentials", slog.String("error", err.Error()))
	}
}
