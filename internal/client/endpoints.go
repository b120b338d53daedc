// ABOUTME: Static catalog of SpendX backend endpoints
// ABOUTME: Maps logical operations to method, path template and auth requirement

package client

import (
	"net/http"
	"net/url"
	"strings"
)

// Endpoint is one logical backend operation. Templates use {id} placeholders.
type Endpoint struct {
	Name     string
	Method   string
	Template string
	Auth     bool
}

// Path expands the template's placeholders in order. Arguments are path-escaped.
func (e Endpoint) Path(args ...string) string {
	p := e.Template
	for _, a := range args {
		i := strings.Index(p, "{")
		if i < 0 {
			break
		}
		j := strings.Index(p[i:], "}")
		if j < 0 {
			break
		}
		p = p[:i] + url.PathEscape(a) + p[i+j+1:]
	}
	return p
}

// Auth
var (
	Login   = Endpoint{Name: "login", Method: http.MethodPost, Template: "/api/auth/login"}
	Signup  = Endpoint{Name: "signup", Method: http.MethodPost, Template: "/api/auth/signup"}
	Refresh = Endpoint{Name: "refresh", Method: http.MethodPost, Template: "/api/auth/refresh"}
	Logout  = Endpoint{Name: "logout", Method: http.MethodPost, Template: "/api/auth/logout", Auth: true}
)

// Users
var (
	GetProfile     = Endpoint{Name: "get-profile", Method: http.MethodGet, Template: "/api/users/me", Auth: true}
	UpdateProfile  = Endpoint{Name: "update-profile", Method: http.MethodPatch, Template: "/api/users/me", Auth: true}
	ChangePassword = Endpoint{Name: "change-password", Method: http.MethodPost, Template: "/api/users/me/change-password", Auth: true}
)

// Transactions
var (
	ListTransactions      = Endpoint{Name: "list-transactions", Method: http.MethodGet, Template: "/api/transactions", Auth: true}
	CreateTransaction     = Endpoint{Name: "create-transaction", Method: http.MethodPost, Template: "/api/transactions", Auth: true}
	GetTransaction        = Endpoint{Name: "get-transaction", Method: http.MethodGet, Template: "/api/transactions/{id}", Auth: true}
	UpdateTransaction     = Endpoint{Name: "update-transaction", Method: http.MethodPatch, Template: "/api/transactions/{id}", Auth: true}
	DeleteTransaction     = Endpoint{Name: "delete-transaction", Method: http.MethodDelete, Template: "/api/transactions/{id}", Auth: true}
	TransactionSummary    = Endpoint{Name: "transaction-summary", Method: http.MethodGet, Template: "/api/transactions/summary", Auth: true}
	TransactionCategories = Endpoint{Name: "transaction-categories", Method: http.MethodGet, Template: "/api/transactions/categories", Auth: true}
)

// Budgets
var (
	CurrentBudget = Endpoint{Name: "current-budget", Method: http.MethodGet, Template: "/api/budgets/current", Auth: true}
	SetBudget     = Endpoint{Name: "set-budget", Method: http.MethodPost, Template: "/api/budgets", Auth: true}
	BudgetHistory = Endpoint{Name: "budget-history", Method: http.MethodGet, Template: "/api/budgets/history", Auth: true}
)

// AI
var (
	Chat        = Endpoint{Name: "ai-chat", Method: http.MethodPost, Template: "/api/ai/chat", Auth: true}
	ChatHistory = Endpoint{Name: "ai-chat-history", Method: http.MethodGet, Template: "/api/ai/chat/{id}", Auth: true}
	Predict     = Endpoint{Name: "ai-predict", Method: http.MethodGet, Template: "/api/ai/predict", Auth: true}
	Insights    = Endpoint{Name: "ai-insights", Method: http.MethodGet, Template: "/api/ai/insights", Auth: true}
)

// Catalog lists every endpoint in a stable order.
func Catalog() []Endpoint {
	return []Endpoint{
		Login, Signup, Refresh, Logout,
		GetProfile, UpdateProfile, ChangePassword,
		ListTransactions, CreateTransaction, GetTransaction, UpdateTransaction, DeleteTransaction,
		TransactionSummary, TransactionCategories,
		CurrentBudget, SetBudget, BudgetHistory,
		Chat, ChatHistory, Predict, Insights,
	}
}
