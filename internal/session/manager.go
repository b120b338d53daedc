// ABOUTME: Session manager owning login, signup, logout, restore and token refresh
// ABOUTME: Single-flights refresh on 401 and keeps the credential store in step with memory

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/store"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a logged-in user.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrSessionExpired is returned when a 401 could not be recovered by refreshing.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrProfileSuperseded is returned when a saved profile was overtaken by a newer one before it could be applied.
	ErrProfileSuperseded = errors.New("profile was saved but changed again meanwhile, reload to see the latest")
)

// State is a step in the session lifecycle.
type State int

const (
	StateUnknown State = iota
	StateRestoring
	StateAuthenticated
	StateRefreshing
	StateAnonymous
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateAnonymous:
		return "anonymous"
	case StateLoggedOut:
		return "logged-out"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is a read-only snapshot of the authentication state.
type Session struct {
	State           State
	AccessToken     string
	RefreshToken    string
	User            *api.UserProfile
	IsAuthenticated bool
	IsLoading       bool
	ExpiresAt       time.Time
}

// Result is the uniform outcome of a session operation.
type Result struct {
	Success bool
	Error   string
	err     error
}

// Err returns the underlying error for errors.Is / errors.As, or nil on success.
func (r Result) Err() error { return r.err }

func success() Result { return Result{Success: true} }

func failure(err error, fallback string) Result {
	var (
		verr   *ValidationError
		apiErr *client.APIError
		msg    string
	)
	switch {
	case errors.As(err, &verr):
		msg = verr.Message
	case errors.Is(err, ErrSessionExpired):
		msg = ErrSessionExpired.Error()
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, store.ErrStorage):
		msg = err.Error()
	case errors.As(err, &apiErr):
		msg = apiErr.Message
	}
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = err.Error()
	}
	return Result{Error: msg, err: err}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager is the single owner of the Session. Create one per process and pass it
// to whatever needs authenticated calls.
type Manager struct {
	store  store.Store
	client *client.Client
	now    func() time.Time

	// writeMu serializes store writes together with the memory update they commit.
	writeMu sync.Mutex

	mu       sync.RWMutex
	state    State
	busy     int
	access   string
	refresh  string
	expiry   time.Time
	user     *api.UserProfile
	verified bool
	applied  uint64

	seq       atomic.Uint64
	refreshes singleflight.Group

	obsMu     sync.Mutex
	observers []func(Session)
}

// NewManager creates a manager and installs it as c's token source.
func NewManager(st store.Store, c *client.Client, opts ...Option) *Manager {
	m := &Manager{
		store:  st,
		client: c,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	c.SetTokenSource(m)
	return m
}

// Token implements oauth2.TokenSource with the in-memory access token.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.access == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  m.access,
		RefreshToken: m.refresh,
		TokenType:    "Bearer",
		Expiry:       m.expiry,
	}, nil
}

// OnChange registers fn to receive a snapshot after every committed transition.
func (m *Manager) OnChange(fn func(Session)) {
	m.obsMu.Lock()
	m.observers = append(m.observers, fn)
	m.obsMu.Unlock()
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated reports whether a token is held and the user came from a successful profile fetch.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticatedLocked()
}

// Restore loads persisted credentials and validates them against the backend.
// Success reports whether the session ended Authenticated; a clean anonymous
// start is not an error and leaves Error empty.
func (m *Manager) Restore(ctx context.Context) Result {
	m.transition(func() {
		m.state = StateRestoring
		m.verified = false
	})
	m.begin()
	defer m.end()

	access, hasAccess, err := m.store.Get(store.KeyAccessToken)
	if err != nil {
		m.dropMemory(StateAnonymous)
		return failure(err, "")
	}
	rawUser, hasUser, err := m.store.Get(store.KeyUser)
	if err != nil {
		m.dropMemory(StateAnonymous)
		return failure(err, "")
	}
	refresh, _, err := m.store.Get(store.KeyRefreshToken)
	if err != nil {
		m.dropMemory(StateAnonymous)
		return failure(err, "")
	}

	if !hasAccess || access == "" || !hasUser {
		slog.Debug("No stored session")
		m.dropMemory(StateAnonymous)
		return Result{}
	}

	var cached *api.UserProfile
	var u api.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		slog.Warn("Ignoring unreadable cached user", "error", err)
	} else {
		cached = &u
	}

	expiry := jwtExpiry(access)
	m.transition(func() {
		m.access = access
		m.refresh = refresh
		m.expiry = expiry
		m.user = cached
	})

	if expired(expiry, m.now()) {
		slog.Debug("Stored access token has expired, refreshing", "expired_at", expiry)
		if err := m.refreshShared(ctx, access); err != nil {
			return failure(err, ErrSessionExpired.Error())
		}
		return success()
	}

	user, seq, err := m.fetchProfile(ctx, access)
	switch {
	case err == nil:
		tok := &oauth2.Token{AccessToken: access, RefreshToken: refresh, Expiry: expiry}
		if err := m.commit(tok, user, seq); err != nil {
			m.dropMemory(StateAnonymous)
			return failure(err, "")
		}
		slog.Debug("Session restored", "user_id", user.ID)
		return success()
	case client.IsUnauthorized(err):
		if err := m.refreshShared(ctx, access); err != nil {
			return failure(err, ErrSessionExpired.Error())
		}
		return success()
	default:
		// Stored credentials are kept so a later restore can succeed once the backend is reachable.
		slog.Warn("Could not verify stored session", "error", err)
		m.dropMemory(StateAnonymous)
		return failure(err, "Could not restore session")
	}
}

// Login exchanges credentials for tokens, fetches the profile, then persists both.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	in := loginInput{Email: email, Password: password}
	if err := api.Validate(in); err != nil {
		return failure(err, "")
	}
	return m.authenticate(ctx, client.Login, in, "Login failed")
}

// Signup registers a new account and logs it in.
func (m *Manager) Signup(ctx context.Context, email, password, name string) Result {
	in := signupInput{Email: email, Password: password, Name: name}
	if err := api.Validate(in); err != nil {
		return failure(err, "")
	}
	return m.authenticate(ctx, client.Signup, in, "Signup failed")
}

func (m *Manager) authenticate(ctx context.Context, e client.Endpoint, body any, fallback string) Result {
	m.begin()
	defer m.end()

	res := m.tryAuthenticate(ctx, e, body, fallback)
	if !res.Success {
		m.transition(func() {
			if !m.authenticatedLocked() {
				m.state = StateAnonymous
			}
		})
	}
	return res
}

func (m *Manager) tryAuthenticate(ctx context.Context, e client.Endpoint, body any, fallback string) Result {
	var raw tokenResponse
	if err := m.client.Do(ctx, client.NewRequest(e).WithBody(body), &raw); err != nil {
		slog.Debug("Authentication request failed", "endpoint", e.Name, "error", err)
		return failure(err, fallback)
	}
	tok, err := raw.token(m.now())
	if err != nil {
		return failure(err, fallback)
	}

	user, seq, err := m.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return failure(err, fallback)
	}
	if err := m.commit(tok, user, seq); err != nil {
		return failure(err, fallback)
	}

	slog.Info("Authenticated", "endpoint", e.Name, "user_id", user.ID)
	return success()
}

// Logout tells the backend (best effort) and always clears the local session.
func (m *Manager) Logout(ctx context.Context) Result {
	if m.currentAccess() != "" {
		if err := m.client.Do(ctx, client.NewRequest(client.Logout), nil); err != nil {
			slog.Debug("Logout request failed, clearing local session anyway", "error", err)
		}
	}
	if err := m.clear(true); err != nil {
		slog.Warn("Failed to remove stored credentials", "error", err)
		return failure(err, "")
	}
	slog.Info("Logged out")
	return success()
}

// Refresh exchanges the refresh token for new tokens. On failure the session is cleared.
func (m *Manager) Refresh(ctx context.Context) Result {
	access := m.currentAccess()
	if access == "" {
		return failure(ErrNotAuthenticated, "")
	}
	if err := m.refreshShared(ctx, access); err != nil {
		return failure(err, ErrSessionExpired.Error())
	}
	return success()
}

// ReloadProfile fetches the profile again and replaces the user record.
func (m *Manager) ReloadProfile(ctx context.Context) Result {
	if !m.IsAuthenticated() {
		return failure(ErrNotAuthenticated, "")
	}
	var user api.UserProfile
	if err := m.Do(ctx, client.NewRequest(client.GetProfile), &user); err != nil {
		return failure(err, "Could not load profile")
	}
	// Numbered after Do so a refresh during the call cannot outrank the retried response.
	applied, err := m.applyProfile(m.seq.Add(1), &user)
	if err != nil {
		return failure(err, "Could not load profile")
	}
	if !applied && !m.IsAuthenticated() {
		return failure(ErrSessionExpired, "")
	}
	return success()
}

// UpdateProfile PATCHes the given fields and replaces the user record with the
// server's response. On failure the prior state is left untouched.
func (m *Manager) UpdateProfile(ctx context.Context, update api.ProfileUpdate) Result {
	if update.Empty() {
		return failure(&ValidationError{Message: "Nothing to update"}, "")
	}
	if err := api.Validate(update); err != nil {
		return failure(err, "")
	}
	if !m.IsAuthenticated() {
		return failure(ErrNotAuthenticated, "")
	}

	m.begin()
	defer m.end()

	var user api.UserProfile
	if err := m.Do(ctx, client.NewRequest(client.UpdateProfile).WithBody(update), &user); err != nil {
		return failure(err, "Update failed")
	}
	applied, err := m.applyProfile(m.seq.Add(1), &user)
	switch {
	case err != nil:
		return failure(err, "Update failed")
	case !applied && !m.IsAuthenticated():
		return failure(ErrSessionExpired, "")
	case !applied:
		return failure(ErrProfileSuperseded, "")
	}
	return success()
}

// ChangePassword changes the password and then clears the local session, so the
// user logs in again with the new password.
func (m *Manager) ChangePassword(ctx context.Context, current, next, confirm string) Result {
	in := passwordInput{Current: current, New: next, Confirm: confirm}
	if err := api.Validate(in); err != nil {
		return failure(err, "")
	}
	if !m.IsAuthenticated() {
		return failure(ErrNotAuthenticated, "")
	}

	m.begin()
	defer m.end()

	body := api.ChangePasswordRequest{CurrentPassword: current, NewPassword: next, ConfirmPassword: confirm}
	if err := m.Do(ctx, client.NewRequest(client.ChangePassword).WithBody(body), nil); err != nil {
		return failure(err, "Failed to change password")
	}
	if err := m.clear(true); err != nil {
		slog.Warn("Failed to remove stored credentials", "error", err)
	}
	slog.Info("Password changed, session cleared")
	return success()
}

// Do performs an authorized call. A 401 triggers at most one refresh and one retry;
// concurrent 401s share a single refresh.
func (m *Manager) Do(ctx context.Context, req *client.Request, out any) error {
	used := m.currentAccess()
	err := m.client.Do(ctx, req, out)
	if req.Anonymous || used == "" || !client.IsUnauthorized(err) {
		return err
	}

	// Another caller already replaced the token that was rejected.
	if current := m.currentAccess(); current != used {
		if current == "" {
			return fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		return m.client.Do(ctx, req, out)
	}

	if rerr := m.refreshShared(ctx, used); rerr != nil {
		if ctx.Err() != nil {
			return rerr
		}
		// Someone else's refresh already failed; report the original rejection.
		if errors.Is(rerr, ErrSessionExpired) {
			rerr = err
		}
		return fmt.Errorf("%w: %w", ErrSessionExpired, rerr)
	}
	return m.client.Do(ctx, req, out)
}

// refreshShared runs at most one refresh at a time. rejected is the access token
// the caller saw fail; if it is no longer current the refresh already happened.
func (m *Manager) refreshShared(ctx context.Context, rejected string) error {
	ch := m.refreshes.DoChan("refresh", func() (any, error) {
		current := m.currentAccess()
		if current == "" {
			return nil, ErrSessionExpired
		}
		if current != rejected {
			return nil, nil
		}
		return nil, m.refreshTokens(context.WithoutCancel(ctx))
	})

	select {
	case r := <-ch:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refreshTokens posts the refresh token, re-fetches the profile and commits.
// Any failure clears the session.
func (m *Manager) refreshTokens(ctx context.Context) error {
	var rt string
	m.transition(func() {
		m.state = StateRefreshing
		rt = m.refresh
	})

	if rt == "" {
		m.expire()
		return ErrSessionExpired
	}

	var raw tokenResponse
	req := client.NewRequest(client.Refresh).WithBody(refreshRequest{RefreshToken: rt})
	if err := m.client.Do(ctx, req, &raw); err != nil {
		slog.Info("Token refresh failed", "error", err)
		m.expire()
		return err
	}
	tok, err := raw.token(m.now())
	if err != nil {
		m.expire()
		return err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = rt
	}

	user, seq, err := m.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		slog.Info("Profile fetch after refresh failed", "error", err)
		m.expire()
		return err
	}
	if err := m.commit(tok, user, seq); err != nil {
		m.expire()
		return err
	}

	slog.Debug("Token refreshed", "expires_at", tok.Expiry)
	return nil
}

// fetchProfile gets the profile with an explicit token, so a not-yet-committed
// token can be verified before anything is persisted.
func (m *Manager) fetchProfile(ctx context.Context, accessToken string) (*api.UserProfile, uint64, error) {
	seq := m.seq.Add(1)
	req := client.NewRequest(client.GetProfile).WithHeader("Authorization", "Bearer "+accessToken)
	var user api.UserProfile
	if err := m.client.Do(ctx, req, &user); err != nil {
		return nil, seq, err
	}
	return &user, seq, nil
}

// commit persists tokens and user, then moves to Authenticated. A failed write
// removes whatever was written so no partial session is left on disk.
func (m *Manager) commit(tok *oauth2.Token, user *api.UserProfile, seq uint64) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	m.writeMu.Lock()
	if err := m.persist(tok, string(data)); err != nil {
		if rerr := m.store.RemoveMany(store.CredentialKeys()...); rerr != nil {
			slog.Warn("Failed to roll back partial credentials", "error", rerr)
		}
		m.writeMu.Unlock()
		return err
	}
	snap := m.apply(func() {
		m.access = tok.AccessToken
		m.refresh = tok.RefreshToken
		m.expiry = tok.Expiry
		m.user = user
		m.verified = true
		m.state = StateAuthenticated
		if seq > m.applied {
			m.applied = seq
		}
	})
	m.writeMu.Unlock()

	m.notify(snap)
	return nil
}

func (m *Manager) persist(tok *oauth2.Token, user string) error {
	if err := m.store.Set(store.KeyAccessToken, tok.AccessToken); err != nil {
		return err
	}
	if tok.RefreshToken != "" {
		if err := m.store.Set(store.KeyRefreshToken, tok.RefreshToken); err != nil {
			return err
		}
	} else if err := m.store.Remove(store.KeyRefreshToken); err != nil {
		return err
	}
	return m.store.Set(store.KeyUser, user)
}

// applyProfile replaces the user record unless a newer response was already applied.
func (m *Manager) applyProfile(seq uint64, user *api.UserProfile) (bool, error) {
	m.writeMu.Lock()

	m.mu.RLock()
	stale := seq <= m.applied
	active := m.access != ""
	m.mu.RUnlock()
	if stale || !active {
		m.writeMu.Unlock()
		slog.Debug("Discarding stale profile response", "seq", seq)
		return false, nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		m.writeMu.Unlock()
		return false, fmt.Errorf("failed to encode user: %w", err)
	}
	if err := m.store.Set(store.KeyUser, string(data)); err != nil {
		m.writeMu.Unlock()
		return false, err
	}
	snap := m.apply(func() {
		m.user = user
		m.verified = true
		m.applied = seq
	})
	m.writeMu.Unlock()

	m.notify(snap)
	return true, nil
}

// clear removes persisted credentials and resets memory. Memory is reset even
// when the store fails.
func (m *Manager) clear(loggedOut bool) error {
	m.writeMu.Lock()
	err := m.store.RemoveMany(store.CredentialKeys()...)
	var snaps []Session
	if loggedOut {
		snaps = append(snaps, m.apply(func() { m.resetLocked(StateLoggedOut) }))
	}
	snaps = append(snaps, m.apply(func() { m.resetLocked(StateAnonymous) }))
	m.writeMu.Unlock()

	for _, s := range snaps {
		m.notify(s)
	}
	return err
}

// expire clears the session after a failed refresh.
func (m *Manager) expire() {
	if err := m.clear(false); err != nil {
		slog.Warn("Failed to remove stored credentials", "error", err)
	}
}

// dropMemory resets memory only. Stored credentials are left alone.
func (m *Manager) dropMemory(next State) {
	m.transition(func() { m.resetLocked(next) })
}

func (m *Manager) resetLocked(next State) {
	m.state = next
	m.access = ""
	m.refresh = ""
	m.expiry = time.Time{}
	m.user = nil
	m.verified = false
}

func (m *Manager) currentAccess() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *Manager) begin() { m.transition(func() { m.busy++ }) }
func (m *Manager) end()   { m.transition(func() { m.busy-- }) }

// transition applies fn under the lock and notifies observers.
func (m *Manager) transition(fn func()) {
	m.notify(m.apply(fn))
}

func (m *Manager) apply(fn func()) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	return m.snapshotLocked()
}

func (m *Manager) notify(s Session) {
	m.obsMu.Lock()
	observers := append([]func(Session){}, m.observers...)
	m.obsMu.Unlock()
	for _, fn := range observers {
		fn(s)
	}
}

func (m *Manager) authenticatedLocked() bool {
	return m.verified && m.access != "" && m.user != nil
}

func (m *Manager) snapshotLocked() Session {
	s := Session{
		State:           m.state,
		AccessToken:     m.access,
		RefreshToken:    m.refresh,
		IsAuthenticated: m.authenticatedLocked(),
		ExpiresAt:       m.expiry,
	}
	switch m.state {
	case StateUnknown, StateRestoring, StateRefreshing:
		s.IsLoading = true
	default:
		s.IsLoading = m.busy > 0
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}
