// ABOUTME: Fake SpendX backend used by the session manager tests
// ABOUTME: Tracks issued tokens and counts calls per endpoint

package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/store"
)

type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	valid          map[string]bool
	refreshable    map[string]string
	user           api.UserProfile
	profileStatus  int
	lastLogoutAuth string

	refreshDelay atomic.Int64

	requests     atomic.Int32
	refreshCalls atomic.Int32
	profileCalls atomic.Int32
	logoutCalls  atomic.Int32
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	f := &fakeBackend{
		t:           t,
		valid:       map[string]bool{},
		refreshable: map[string]string{"R": "B"},
		user:        api.UserProfile{ID: "1", Name: "Ann", Email: "user@example.com"},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBackend) URL() string { return f.server.URL }

func (f *fakeBackend) accept(token string) {
	f.mu.Lock()
	f.valid[token] = true
	f.mu.Unlock()
}

func (f *fakeBackend) revoke(token string) {
	f.mu.Lock()
	delete(f.valid, token)
	f.mu.Unlock()
}

func (f *fakeBackend) rejectRefresh() {
	f.mu.Lock()
	f.refreshable = map[string]string{}
	f.mu.Unlock()
}

func (f *fakeBackend) setProfileStatus(status int) {
	f.mu.Lock()
	f.profileStatus = status
	f.mu.Unlock()
}

func (f *fakeBackend) logoutAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLogoutAuth
}

func (f *fakeBackend) authorized(r *http.Request) bool {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valid[tok]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		var in struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "correctpw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
			return
		}
		f.accept("A")
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "A", "refresh_token": "R", "token_type": "bearer"})

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup":
		var in struct{ Email, Password, Name string }
		json.NewDecoder(r.Body).Decode(&in)
		if in.Email == "taken@example.com" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
			return
		}
		f.mu.Lock()
		f.user = api.UserProfile{ID: "2", Name: in.Name, Email: in.Email}
		f.mu.Unlock()
		f.accept("S")
		writeJSON(w, http.StatusCreated, map[string]string{"accessToken": "S", "refreshToken": "R"})

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/refresh":
		f.refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "" {
			f.t.Errorf("refresh must not carry a bearer token")
		}
		time.Sleep(time.Duration(f.refreshDelay.Load()))
		var in refreshRequest
		json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		next, ok := f.refreshable[in.RefreshToken]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
			return
		}
		f.accept(next)
		writeJSON(w, http.StatusOK, map[string]string{"access_token": next, "refresh_token": "R2"})

	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout":
		f.logoutCalls.Add(1)
		f.mu.Lock()
		f.lastLogoutAuth = r.Header.Get("Authorization")
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Successfully logged out", Success: true})

	case r.Method == http.MethodGet && r.URL.Path == "/api/users/me":
		f.profileCalls.Add(1)
		f.mu.Lock()
		status := f.profileStatus
		user := f.user
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": "profile unavailable"})
			return
		}
		if !f.authorized(r) {
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case r.Method == http.MethodPatch && r.URL.Path == "/api/users/me":
		if !f.authorized(r) {
			unauthorized(w)
			return
		}
		var in api.ProfileUpdate
		json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		if in.Name != nil {
			f.user.Name = *in.Name
		}
		user := f.user
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, user)

	case r.Method == http.MethodPost && r.URL.Path == "/api/users/me/change-password":
		if !f.authorized(r) {
			unauthorized(w)
			return
		}
		var in api.ChangePasswordRequest
		json.NewDecoder(r.Body).Decode(&in)
		if in.CurrentPassword != "OldPass1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Current password is incorrect"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})

	case r.Method == http.MethodGet && r.URL.Path == "/api/transactions":
		if !f.authorized(r) {
			unauthorized(w)
			return
		}
		writeJSON(w, http.StatusOK, api.TransactionPage{Total: 1, Page: 1, PerPage: 20, Pages: 1,
			Items: []api.Transaction{{ID: "t1", Amount: 250, Type: api.TypeExpense}}})

	default:
		http.NotFound(w, r)
	}
}

type fixture struct {
	backend *fakeBackend
	store   *store.Memory
	manager *Manager
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := newFakeBackend(t)
	st := store.NewMemory()
	return &fixture{backend: f, store: st, manager: NewManager(st, client.New(f.URL()), opts...)}
}

func (fx *fixture) login(t *testing.T) {
	t.Helper()
	res := fx.manager.Login(t.Context(), "user@example.com", "correctpw")
	require.True(t, res.Success, res.Error)
}

func (fx *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := fx.store.Get(key)
	require.NoError(t, err)
	return v, ok
}

// storedUser decodes the persisted user record.
func (fx *fixture) storedUser(t *testing.T) api.UserProfile {
	t.Helper()
	raw, ok := fx.stored(t, store.KeyUser)
	require.True(t, ok, "no stored user")
	var u api.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	return u
}
