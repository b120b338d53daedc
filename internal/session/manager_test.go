// ABOUTME: Tests for the session manager state machine
// ABOUTME: Covers restore, login, signup, logout, refresh-and-retry and profile updates

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/store"
)

func seedSession(t *testing.T, st store.Store, access, refresh string, user api.UserProfile) {
	t.Helper()
	data, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, st.Set(store.KeyAccessToken, access))
	require.NoError(t, st.Set(store.KeyRefreshToken, refresh))
	require.NoError(t, st.Set(store.KeyUser, string(data)))
}

func listTransactions(ctx context.Context, m *Manager) (*api.TransactionPage, error) {
	var page api.TransactionPage
	err := m.Do(ctx, client.NewRequest(client.ListTransactions), &page)
	return &page, err
}

func TestNewManager_StartsUnknown(t *testing.T) {
	fx := newFixture(t)

	s := fx.manager.Snapshot()
	assert.Equal(t, StateUnknown, s.State)
	assert.True(t, s.IsLoading)
	assert.False(t, s.IsAuthenticated)
}

func TestRestore_NoStoredToken(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Restore(t.Context())

	assert.False(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.False(t, fx.manager.Snapshot().IsLoading)
	assert.Zero(t, fx.backend.requests.Load(), "restore without a token must not touch the network")
}

func TestRestore_TokenWithoutUserIsAnonymous(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.store.Set(store.KeyAccessToken, "A"))

	fx.manager.Restore(t.Context())

	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.backend.requests.Load())
}

func TestRestore_Success(t *testing.T) {
	fx := newFixture(t)
	fx.backend.accept("A")
	seedSession(t, fx.store, "A", "R", api.UserProfile{ID: "1", Name: "Old Name"})

	res := fx.manager.Restore(t.Context())

	require.True(t, res.Success, res.Error)
	s := fx.manager.Snapshot()
	assert.Equal(t, StateAuthenticated, s.State)
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Ann", s.User.Name, "user should come from the fresh profile fetch")

	raw, _ := fx.stored(t, store.KeyUser)
	var cached api.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "Ann", cached.Name, "cached user should be overwritten")
}

func TestRestore_Idempotent(t *testing.T) {
	fx := newFixture(t)
	fx.backend.accept("A")
	seedSession(t, fx.store, "A", "R", api.UserProfile{ID: "1", Name: "Ann"})

	fx.manager.Restore(t.Context())
	first := fx.manager.Snapshot()
	fx.manager.Restore(t.Context())
	second := fx.manager.Snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), fx.backend.profileCalls.Load())
	assert.Zero(t, fx.backend.refreshCalls.Load())
}

func TestRestore_UnauthorizedRefreshes(t *testing.T) {
	fx := newFixture(t)
	seedSession(t, fx.store, "A", "R", api.UserProfile{ID: "1", Name: "Ann"})

	res := fx.manager.Restore(t.Context())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, StateAuthenticated, fx.manager.State())
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	tok, _ := fx.stored(t, store.KeyAccessToken)
	assert.Equal(t, "B", tok)
	rt, _ := fx.stored(t, store.KeyRefreshToken)
	assert.Equal(t, "R2", rt)
}

func TestRestore_RefreshFailsClearsCredentials(t *testing.T) {
	fx := newFixture(t)
	fx.backend.rejectRefresh()
	seedSession(t, fx.store, "A", "R", api.UserProfile{ID: "1", Name: "Ann"})

	res := fx.manager.Restore(t.Context())

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid refresh token", res.Error)
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.store.Len())
}

func TestRestore_ExpiredJWTSkipsProfileFetch(t *testing.T) {
	expiredAt := time.Date(2031, time.March, 1, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t, WithClock(func() time.Time { return expiredAt.Add(time.Hour) }))
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(expiredAt),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	seedSession(t, fx.store, access, "R", api.UserProfile{ID: "1", Name: "Ann"})

	res := fx.manager.Restore(t.Context())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, int32(1), fx.backend.profileCalls.Load(), "only the post-refresh profile fetch should happen")
	assert.Equal(t, "B", fx.manager.Snapshot().AccessToken)
}

func TestRestore_TransportErrorKeepsCredentials(t *testing.T) {
	st := store.NewMemory()
	seedSession(t, st, "A", "R", api.UserProfile{ID: "1", Name: "Ann"})
	m := NewManager(st, client.New("http://127.0.0.1:1"))

	res := m.Restore(t.Context())

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.True(t, client.IsTransport(res.Err()))
	assert.Equal(t, StateAnonymous, m.State())
	assert.Equal(t, 3, st.Len(), "credentials should survive an unreachable backend")
}

func TestRestore_StorageError(t *testing.T) {
	fx := newFixture(t)
	fx.store.FailWith(errors.New("permission denied"))

	res := fx.manager.Restore(t.Context())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), store.ErrStorage)
	assert.Equal(t, StateAnonymous, fx.manager.State())
}

func TestLogin_Success(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Login(t.Context(), "user@example.com", "correctpw")

	require.True(t, res.Success, res.Error)
	s := fx.manager.Snapshot()
	assert.Equal(t, StateAuthenticated, s.State)
	assert.True(t, s.IsAuthenticated)
	assert.False(t, s.IsLoading)
	require.NotNil(t, s.User)
	assert.Equal(t, "Ann", s.User.Name)

	tok, ok := fx.stored(t, store.KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "A", tok)
	rt, _ := fx.stored(t, store.KeyRefreshToken)
	assert.Equal(t, "R", rt)
	_, ok = fx.stored(t, store.KeyUser)
	assert.True(t, ok)
}

func TestLogin_BadCredentials(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Login(t.Context(), "user@example.com", "wrongpw")

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid email or password", res.Error)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(res.Err()))
	assert.False(t, fx.manager.IsAuthenticated())
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.store.Len(), "no partial tokens may be persisted")
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	res := fx.manager.Login(t.Context(), "user@example.com", "wrongpw")

	assert.False(t, res.Success)
	assert.Equal(t, StateAuthenticated, fx.manager.State())
	assert.Equal(t, "A", fx.manager.Snapshot().AccessToken)
	tok, ok := fx.stored(t, store.KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "A", tok)
}

func TestLogin_ProfileFailureLeavesNothingStored(t *testing.T) {
	fx := newFixture(t)
	fx.backend.setProfileStatus(http.StatusInternalServerError)

	res := fx.manager.Login(t.Context(), "user@example.com", "correctpw")

	assert.False(t, res.Success)
	assert.Equal(t, "profile unavailable", res.Error)
	assert.False(t, fx.manager.IsAuthenticated())
	assert.Zero(t, fx.store.Len())
	_, err := fx.manager.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogin_StorageFailure(t *testing.T) {
	fx := newFixture(t)
	fx.store.FailWith(errors.New("disk full"))

	res := fx.manager.Login(t.Context(), "user@example.com", "correctpw")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), store.ErrStorage)
	assert.False(t, fx.manager.IsAuthenticated())
}

func TestLogin_TransportFailure(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st, client.New("http://127.0.0.1:1"))

	res := m.Login(t.Context(), "user@example.com", "correctpw")

	assert.False(t, res.Success)
	assert.True(t, client.IsTransport(res.Err()))
	assert.Zero(t, st.Len())
	assert.Equal(t, StateAnonymous, m.State())
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{"empty email", "", "pw", "Email is required"},
		{"bad email", "not-an-email", "pw", "Please enter a valid email address"},
		{"empty password", "user@example.com", "", "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)

			res := fx.manager.Login(t.Context(), tt.email, tt.password)

			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Error)
			var verr *ValidationError
			assert.ErrorAs(t, res.Err(), &verr)
			assert.Zero(t, fx.backend.requests.Load())
		})
	}
}

func TestSignup_Success(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Signup(t.Context(), "new@example.com", "longenough", "Bea")

	require.True(t, res.Success, res.Error)
	s := fx.manager.Snapshot()
	assert.True(t, s.IsAuthenticated)
	assert.Equal(t, "Bea", s.User.Name)
	assert.Equal(t, "S", s.AccessToken, "camelCase token fields should be normalized")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Signup(t.Context(), "taken@example.com", "longenough", "Bea")

	assert.False(t, res.Success)
	assert.Equal(t, "Email already registered", res.Error)
	assert.Zero(t, fx.store.Len())
}

func TestSignup_Validation(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Signup(t.Context(), "new@example.com", "short", "Bea")
	assert.Equal(t, "Password must be at least 8 characters", res.Error)

	res = fx.manager.Signup(t.Context(), "new@example.com", "longenough", "B")
	assert.Equal(t, "Name must be at least 2 characters", res.Error)

	assert.Zero(t, fx.backend.requests.Load())
}

func TestDo_AttachesToken(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	page, err := listTransactions(t.Context(), fx.manager)

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Zero(t, fx.backend.refreshCalls.Load())
}

func TestDo_RefreshAndRetry(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")

	page, err := listTransactions(t.Context(), fx.manager)

	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, StateAuthenticated, fx.manager.State())
	tok, _ := fx.stored(t, store.KeyAccessToken)
	assert.Equal(t, "B", tok)
}

func TestDo_RefreshFailureClearsSession(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")
	fx.backend.rejectRefresh()

	_, err := listTransactions(t.Context(), fx.manager)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.False(t, fx.manager.IsAuthenticated())
	for _, key := range store.CredentialKeys() {
		_, ok := fx.stored(t, key)
		assert.False(t, ok, "key %s should be removed", key)
	}
}

func TestDo_UnauthenticatedRequestIsNotRefreshed(t *testing.T) {
	fx := newFixture(t)

	_, err := listTransactions(t.Context(), fx.manager)

	assert.True(t, client.IsUnauthorized(err))
	assert.Zero(t, fx.backend.refreshCalls.Load())
}

func TestDo_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")
	fx.backend.refreshDelay.Store(int64(50 * time.Millisecond))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = listTransactions(t.Context(), fx.manager)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, "B", fx.manager.Snapshot().AccessToken)
}

func TestDo_ConcurrentUnauthorizedShareRefreshFailure(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")
	fx.backend.rejectRefresh()
	fx.backend.refreshDelay.Store(int64(50 * time.Millisecond))

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = listTransactions(t.Context(), fx.manager)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.True(t, client.IsUnauthorized(err), "request %d: %v", i, err)
	}
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.store.Len())
}

func TestRefresh_Explicit(t *testing.T) {
	fx := newFixture(t)

	res := fx.manager.Refresh(t.Context())
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), ErrNotAuthenticated)

	fx.login(t)
	res = fx.manager.Refresh(t.Context())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "B", fx.manager.Snapshot().AccessToken)
	assert.Equal(t, "R2", fx.manager.Snapshot().RefreshToken)
}

func TestLogout_ClearsEverything(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	require.NoError(t, fx.store.Set(store.KeyCurrency, "USD"))

	res := fx.manager.Logout(t.Context())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, int32(1), fx.backend.logoutCalls.Load())
	assert.Equal(t, "Bearer A", fx.backend.logoutAuth())
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.False(t, fx.manager.IsAuthenticated())
	for _, key := range store.CredentialKeys() {
		_, ok := fx.stored(t, key)
		assert.False(t, ok, "key %s should be removed", key)
	}
	cur, ok := fx.stored(t, store.KeyCurrency)
	assert.True(t, ok, "preferences are not part of the session")
	assert.Equal(t, "USD", cur)
}

func TestLogout_NetworkUnreachable(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.server.Close()

	res := fx.manager.Logout(t.Context())

	assert.True(t, res.Success)
	assert.False(t, fx.manager.IsAuthenticated())
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.store.Len())
}

func TestLogout_ObserversSeeLoggedOut(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	var mu sync.Mutex
	var states []State
	fx.manager.OnChange(func(s Session) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	fx.manager.Logout(t.Context())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateLoggedOut, StateAnonymous}, states)
}

func TestOnChange_ReportsAuthenticated(t *testing.T) {
	fx := newFixture(t)

	var mu sync.Mutex
	var last Session
	fx.manager.OnChange(func(s Session) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	fx.login(t)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, last.IsAuthenticated)
	assert.False(t, last.IsLoading)
}

func TestUpdateProfile_Success(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	name := "New Name"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &name})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "New Name", fx.manager.Snapshot().User.Name)

	raw, _ := fx.stored(t, store.KeyUser)
	var cached api.UserProfile
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, "New Name", cached.Name)
}

func TestUpdateProfile_NetworkFailureLeavesStateUntouched(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	before, _ := fx.stored(t, store.KeyUser)
	fx.backend.server.Close()

	name := "New Name"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &name})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, "Ann", fx.manager.Snapshot().User.Name)
	after, _ := fx.stored(t, store.KeyUser)
	assert.Equal(t, before, after)
	assert.True(t, fx.manager.IsAuthenticated())
}

func TestUpdateProfile_AfterTokenRevoked(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")

	name := "New Name"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &name})

	require.True(t, res.Success, res.Error)
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, "B", fx.manager.Snapshot().AccessToken)
	assert.Equal(t, "New Name", fx.manager.Snapshot().User.Name)
	assert.Equal(t, "New Name", fx.storedUser(t).Name)
}

func TestUpdateProfile_RefreshFailureReportsExpiry(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")
	fx.backend.rejectRefresh()

	name := "New Name"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &name})

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err(), ErrSessionExpired)
	assert.False(t, fx.manager.IsAuthenticated())
	assert.Zero(t, fx.store.Len())
}

func TestUpdateProfile_Validation(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	before := fx.backend.requests.Load()

	short := "A"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &short})
	assert.Equal(t, "Name must be at least 2 characters", res.Error)

	res = fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{})
	assert.Equal(t, "Nothing to update", res.Error)

	assert.Equal(t, before, fx.backend.requests.Load())
}

func TestUpdateProfile_RequiresLogin(t *testing.T) {
	fx := newFixture(t)

	name := "New Name"
	res := fx.manager.UpdateProfile(t.Context(), api.ProfileUpdate{Name: &name})

	assert.ErrorIs(t, res.Err(), ErrNotAuthenticated)
	assert.Zero(t, fx.backend.requests.Load())
}

func TestApplyProfile_DiscardsStaleResponse(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	older := fx.manager.seq.Add(1)
	newer := fx.manager.seq.Add(1)

	applied, err := fx.manager.applyProfile(newer, &api.UserProfile{ID: "1", Name: "Newer"})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = fx.manager.applyProfile(older, &api.UserProfile{ID: "1", Name: "Older"})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, "Newer", fx.manager.Snapshot().User.Name)
}

func TestReloadProfile(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.mu.Lock()
	fx.backend.user.Name = "Renamed"
	fx.backend.mu.Unlock()

	res := fx.manager.ReloadProfile(t.Context())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Renamed", fx.manager.Snapshot().User.Name)
}

func TestReloadProfile_AfterTokenRevoked(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)
	fx.backend.revoke("A")
	fx.backend.mu.Lock()
	fx.backend.user.Name = "Renamed"
	fx.backend.mu.Unlock()

	res := fx.manager.ReloadProfile(t.Context())

	require.True(t, res.Success, res.Error)
	assert.Equal(t, int32(1), fx.backend.refreshCalls.Load())
	assert.Equal(t, "Renamed", fx.manager.Snapshot().User.Name)
	assert.Equal(t, "Renamed", fx.storedUser(t).Name)
}

func TestChangePassword_Policy(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		message string
	}{
		{"missing current", "", "NewPass1", "NewPass1", "Please enter your current password"},
		{"too short", "OldPass1", "Ab1", "Ab1", "New password must be at least 8 characters"},
		{"no uppercase", "OldPass1", "newpass12", "newpass12", "New password must have: one uppercase letter"},
		{"no digit or lowercase", "OldPass1", "NEWPASSWORD", "NEWPASSWORD", "New password must have: one lowercase letter, one number"},
		{"same as current", "OldPass1", "OldPass1", "OldPass1", "New password must be different from current password"},
		{"mismatch", "OldPass1", "NewPass1", "NewPass2", "New passwords do not match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			fx.login(t)
			before := fx.backend.requests.Load()

			res := fx.manager.ChangePassword(t.Context(), tt.current, tt.next, tt.confirm)

			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Error)
			assert.Equal(t, before, fx.backend.requests.Load())
			assert.True(t, fx.manager.IsAuthenticated())
		})
	}
}

func TestChangePassword_SuccessClearsSession(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	res := fx.manager.ChangePassword(t.Context(), "OldPass1", "NewPass1", "NewPass1")

	require.True(t, res.Success, res.Error)
	assert.Equal(t, StateAnonymous, fx.manager.State())
	assert.Zero(t, fx.store.Len())
}

func TestChangePassword_WrongCurrent(t *testing.T) {
	fx := newFixture(t)
	fx.login(t)

	res := fx.manager.ChangePassword(t.Context(), "WrongPass1", "NewPass1", "NewPass1")

	assert.False(t, res.Success)
	assert.Equal(t, "Current password is incorrect", res.Error)
	assert.True(t, fx.manager.IsAuthenticated())
}

func TestToken(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.manager.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	fx.login(t)
	tok, err := fx.manager.Token()
	require.NoError(t, err)
	assert.Equal(t, "A", tok.AccessToken)
	assert.Equal(t, "R", tok.RefreshToken)
	assert.Equal(t, "Bearer", tok.Type())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "authenticated", StateAuthenticated.String())
	assert.Equal(t, "logged-out", StateLoggedOut.String())
	assert.Equal(t, "state(42)", State(42).String())
}
