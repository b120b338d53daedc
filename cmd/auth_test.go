// ABOUTME: Tests for login, signup, logout and whoami
// ABOUTME: Verifies output, exit codes and what reaches the credential store

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/PrathikReddy560/SpendX/internal/store"
	"github.com/PrathikReddy560/SpendX/internal/tui/forms"
)

func TestLogin_Success(t *testing.T) {
	f := newFakeAPI(t)
	a, st := newTestApp(t, f)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, a, forms.Credentials{Email: " ann@example.com ", Password: "Secret123"})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as Ann <ann@example.com>") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if v, _, _ := st.Get(store.KeyAccessToken); v != "A" {
		t.Errorf("expected access token persisted, got %q", v)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	f := newFakeAPI(t)
	a, st := newTestApp(t, f)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, a, forms.Credentials{Email: "ann@example.com", Password: "nope"})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error: Invalid email or password") {
		t.Errorf("expected backend message, got %q", buf.String())
	}
	if st.Len() != 0 {
		t.Errorf("expected nothing persisted, got %d keys", st.Len())
	}
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := newTestApp(t, f)

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, a, forms.Credentials{Email: "not-an-email", Password: "x"})

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Please enter a valid email address") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if f.total() != 0 {
		t.Errorf("expected no requests, got %d", f.total())
	}
}

func TestLogin_ConnectionError(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := newTestApp(t, f)
	f.srv.Close()

	var buf bytes.Buffer
	exitCode := runLogin(context.Background(), &buf, a, forms.Credentials{Email: "ann@example.com", Password: "Secret123"})

	if exitCode != 2 {
		t.Errorf("expected exit code 2, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Error:") {
		t.Error("expected error message in output")
	}
}

func TestSignup(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := newTestApp(t, f)

	var buf bytes.Buffer
	exitCode := runSignup(context.Background(), &buf, a, forms.Signup{Name: "Bo", Email: "bo@example.com", Password: "longenough"})

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Account created as Bo <bo@example.com>") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := newTestApp(t, f)

	var buf bytes.Buffer
	exitCode := runSignup(context.Background(), &buf, a, forms.Signup{Name: "Bo", Email: "taken@example.com", Password: "longenough"})

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "Email already registered") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestLogout(t *testing.T) {
	f := newFakeAPI(t)
	a, st := loggedInApp(t, f)
	st.Set(store.KeyCurrency, "USD")

	var buf bytes.Buffer
	exitCode := runLogout(context.Background(), &buf, a)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if f.calls("POST /api/auth/logout") != 1 {
		t.Error("expected backend logout call")
	}
	if _, ok, _ := st.Get(store.KeyAccessToken); ok {
		t.Error("expected access token removed")
	}
	if v, _, _ := st.Get(store.KeyCurrency); v != "USD" {
		t.Error("expected preferences to survive logout")
	}

	buf.Reset()
	if code := runWhoami(&buf, a); code != 1 {
		t.Errorf("expected whoami exit 1 after logout, got %d", code)
	}
}

func TestLogout_BackendDown(t *testing.T) {
	f := newFakeAPI(t)
	a, st := loggedInApp(t, f)
	f.srv.Close()

	var buf bytes.Buffer
	if code := runLogout(context.Background(), &buf, a); code != 0 {
		t.Fatalf("expected local logout to succeed, got %d: %s", code, buf.String())
	}
	if st.Len() != 0 {
		t.Errorf("expected credentials removed, got %d keys", st.Len())
	}
}

func TestWhoami(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := loggedInApp(t, f)

	var buf bytes.Buffer
	if code := runWhoami(&buf, a); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if strings.TrimSpace(buf.String()) != "Ann <ann@example.com>" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWhoami_JSONHidesTokens(t *testing.T) {
	withJSON(t)
	f := newFakeAPI(t)
	a, _ := loggedInApp(t, f)

	var buf bytes.Buffer
	if code := runWhoami(&buf, a); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	var parsed map[string]any
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if parsed["authenticated"] != true || parsed["state"] != "authenticated" {
		t.Errorf("unexpected session view %v", parsed)
	}
	if strings.Contains(buf.String(), `"A"`) || strings.Contains(buf.String(), "token\"") {
		t.Errorf("tokens must not be printed: %s", buf.String())
	}
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	f := newFakeAPI(t)
	a, _ := newTestApp(t, f)
	a.restore(context.Background())

	var buf bytes.Buffer
	if code := runWhoami(&buf, a); code != 1 {
		t.Errorf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "Not logged in.") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if f.total() != 0 {
		t.Errorf("anonymous restore should not call the backend, got %d requests", f.total())
	}
}
