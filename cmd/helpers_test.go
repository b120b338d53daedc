// ABOUTME: Test helpers for command tests
// ABOUTME: Fake SpendX backend plus an app wired to an in-memory store

package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/PrathikReddy560/SpendX/config"
	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/store"
)

const testTxID = "6f1c2d3e-4a5b-4c6d-8e7f-901234567890"

type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	valid    map[string]bool
	user     api.UserProfile
	requests []string
	bodies   map[string]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:      t,
		valid:  map[string]bool{},
		bodies: map[string]string{},
		user: api.UserProfile{
			ID:                "1",
			Name:              "Ann",
			Email:             "ann@example.com",
			CurrentMonthSpent: 123456,
		},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// calls returns how many requests matched "METHOD /path".
func (f *fakeAPI) calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == route {
			n++
		}
	}
	return n
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeAPI) body(route string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) handle(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	raw, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, route)
	f.bodies[route] = string(raw)
	authed := f.valid[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	f.mu.Unlock()

	switch route {
	case "POST /api/auth/login":
		var in struct{ Email, Password string }
		json.Unmarshal(raw, &in)
		if in.Password != "Secret123" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
			return
		}
		f.accept("A")
		reply(w, http.StatusOK, map[string]string{"access_token": "A", "refresh_token": "R", "token_type": "bearer"})
		return

	case "POST /api/auth/signup":
		var in struct{ Email, Name string }
		json.Unmarshal(raw, &in)
		if in.Email == "taken@example.com" {
			reply(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
			return
		}
		f.mu.Lock()
		f.user = api.UserProfile{ID: "2", Name: in.Name, Email: in.Email}
		f.mu.Unlock()
		f.accept("S")
		reply(w, http.StatusCreated, map[string]string{"access_token": "S", "refresh_token": "R"})
		return

	case "POST /api/auth/refresh":
		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		json.Unmarshal(raw, &in)
		if in.RefreshToken != "R" {
			reply(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
			return
		}
		f.accept("A2")
		reply(w, http.StatusOK, map[string]string{"access_token": "A2", "refresh_token": "R2"})
		return
	}

	if !authed {
		reply(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}

	switch {
	case route == "POST /api/auth/logout":
		reply(w, http.StatusOK, api.MessageResponse{Message: "Logged out", Success: true})

	case route == "GET /api/users/me":
		f.mu.Lock()
		u := f.user
		f.mu.Unlock()
		reply(w, http.StatusOK, u)

	case route == "PATCH /api/users/me":
		var in api.ProfileUpdate
		json.Unmarshal(raw, &in)
		f.mu.Lock()
		if in.Name != nil {
			f.user.Name = *in.Name
		}
		u := f.user
		f.mu.Unlock()
		reply(w, http.StatusOK, u)

	case route == "POST /api/users/me/change-password":
		var in api.ChangePasswordRequest
		json.Unmarshal(raw, &in)
		if in.CurrentPassword != "Secret123" {
			reply(w, http.StatusBadRequest, map[string]string{"detail": "Current password is incorrect"})
			return
		}
		reply(w, http.StatusOK, api.MessageResponse{Message: "Password changed successfully", Success: true})

	case route == "GET /api/transactions":
		reply(w, http.StatusOK, api.TransactionPage{
			Items: []api.Transaction{sampleTx()}, Total: 1, Page: 1, PerPage: 20, Pages: 1,
		})

	case route == "POST /api/transactions":
		var in api.TransactionCreate
		json.Unmarshal(raw, &in)
		tx := sampleTx()
		tx.Amount = in.Amount
		tx.Type = in.Type
		reply(w, http.StatusCreated, tx)

	case route == "GET /api/transactions/"+testTxID, route == "PATCH /api/transactions/"+testTxID:
		reply(w, http.StatusOK, sampleTx())

	case route == "DELETE /api/transactions/"+testTxID:
		reply(w, http.StatusOK, api.MessageResponse{Message: "Transaction deleted", Success: true})

	case route == "GET /api/transactions/summary":
		reply(w, http.StatusOK, api.Summary{
			TotalIncome: 50000, TotalExpense: 12500, Balance: 37500,
			CategoryBreakdown: []api.CategoryBreakdown{
				{CategoryID: 1, CategoryName: "Food & Dining", Amount: 12500, Percentage: 100, TransactionCount: 3},
			},
		})

	case route == "GET /api/transactions/categories":
		reply(w, http.StatusOK, []api.Category{{ID: 1, Name: "Food & Dining"}, {ID: 2, Name: "Transport"}})

	case route == "GET /api/budgets/current", route == "POST /api/budgets":
		reply(w, http.StatusOK, sampleBudget())

	case route == "GET /api/budgets/history":
		reply(w, http.StatusOK, api.BudgetList{Items: []api.Budget{sampleBudget()}})

	case route == "POST /api/ai/chat":
		reply(w, http.StatusOK, api.ChatResponse{
			Message:        api.ChatMessage{Role: "assistant", Content: "Food is your biggest category."},
			ConversationID: "c0ffee00-0000-4000-8000-000000000001",
		})

	case strings.HasPrefix(route, "GET /api/ai/chat/"):
		reply(w, http.StatusOK, api.ChatHistory{
			ConversationID: strings.TrimPrefix(route, "GET /api/ai/chat/"),
			Messages: []api.ChatMessage{
				{Role: "user", Content: "where did my money go?"},
				{Role: "assistant", Content: "Mostly food."},
			},
		})

	case route == "GET /api/ai/predict":
		reply(w, http.StatusOK, api.Prediction{
			NextMonth: "November 2026", PredictedTotal: 14000, LastMonthTotal: 12500,
			RiskLevel: "medium", Recommendations: []string{"Cook at home twice a week"},
		})

	case route == "GET /api/ai/insights":
		reply(w, http.StatusOK, api.Insights{Insights: []api.Insight{
			{Type: "warning", Title: "Dining up 30%", Description: "You ate out more this month."},
		}})

	default:
		reply(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}
}

func (f *fakeAPI) accept(token string) {
	f.mu.Lock()
	f.valid[token] = true
	f.mu.Unlock()
}

func sampleTx() api.Transaction {
	desc := "lunch"
	return api.Transaction{
		ID:          testTxID,
		Amount:      250,
		Type:        api.TypeExpense,
		Description: &desc,
		Date:        "2026-10-01",
		Category:    api.Category{ID: 1, Name: "Food & Dining"},
	}
}

func sampleBudget() api.Budget {
	return api.Budget{
		ID: "b1", Year: 2026, Month: 10,
		TotalLimit: 20000, TotalSpent: 12500, Remaining: 7500, PercentageUsed: 62.5,
		CategoryLimits: []api.BudgetCategory{
			{CategoryID: 1, CategoryName: "Food & Dining", LimitAmount: 10000, SpentAmount: 12500, PercentageUsed: 125},
		},
	}
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Env:        config.Development,
		APIBaseURL: baseURL,
		ConfigDir:  t.TempDir(),
		CacheTTL:   60,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// newTestApp returns an app talking to f with an empty in-memory store.
func newTestApp(t *testing.T, f *fakeAPI) (*app, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	a, err := newApp(testConfig(t, f.srv.URL), st)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.Close)
	return a, st
}

// loggedInApp returns an app whose session was restored from stored credentials.
func loggedInApp(t *testing.T, f *fakeAPI) (*app, *store.Memory) {
	t.Helper()
	f.accept("A")
	a, st := newTestApp(t, f)
	st.Set(store.KeyAccessToken, "A")
	st.Set(store.KeyRefreshToken, "R")
	st.Set(store.KeyUser, `{"id":"1","name":"Ann","email":"ann@example.com"}`)
	a.restore(context.Background())
	if !a.session.IsAuthenticated() {
		t.Fatalf("expected restored session, state %s", a.session.State())
	}
	return a, st
}

// withJSON enables --json for the duration of the test.
func withJSON(t *testing.T) {
	t.Helper()
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })
}
