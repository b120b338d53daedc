// ABOUTME: Data transfer types for the SpendX backend API
// ABOUTME: Mirrors the backend's JSON schemas for users, transactions, budgets and AI

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Money is a decimal amount. The backend serializes decimals as JSON strings
// ("1250.50") or numbers depending on the endpoint, so both are accepted.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", s, err)
		}
		*m = Money(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*m = Money(f)
	return nil
}

// MarshalJSON writes the amount as a two-decimal string, the form the backend validates.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(m), 'f', 2, 64))
}

// Transaction types
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// UserProfile is the server-authoritative user record.
type UserProfile struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	Name                 string     `json:"name"`
	AvatarURL            *string    `json:"avatar_url,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	DOB                  *string    `json:"dob,omitempty"`
	Gender               *string    `json:"gender,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	IsPremium            bool       `json:"is_premium"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`

	// Only present on GET /api/users/me.
	TotalExpenses     Money `json:"total_expenses,omitempty"`
	TotalIncome       Money `json:"total_income,omitempty"`
	CurrentMonthSpent Money `json:"current_month_spent,omitempty"`
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	Name                 *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	AvatarURL            *string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Phone                *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	DOB                  *string `json:"dob,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Gender               *string `json:"gender,omitempty" validate:"omitempty,max=20"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.AvatarURL == nil && u.Phone == nil &&
		u.DOB == nil && u.Gender == nil && u.NotificationsEnabled == nil
}

// ChangePasswordRequest is the body of POST /api/users/me/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// MessageResponse is the generic {"message", "success"} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Category is a transaction category.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID             string    `json:"id"`
	Amount         Money     `json:"amount"`
	Type           string    `json:"type"`
	Description    *string   `json:"description"`
	Date           string    `json:"date"`
	Category       Category  `json:"category"`
	IsAutoDetected bool      `json:"is_auto_detected"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransactionCreate is the body of POST /api/transactions.
type TransactionCreate struct {
	Amount      Money   `json:"amount" validate:"gt=0"`
	CategoryID  int     `json:"category_id" validate:"required"`
	Type        string  `json:"type" validate:"oneof=income expense"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// TransactionUpdate carries only the fields being changed.
type TransactionUpdate struct {
	Amount      *Money  `json:"amount,omitempty" validate:"omitempty,gt=0"`
	CategoryID  *int    `json:"category_id,omitempty"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=income expense"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// TransactionPage is one page of GET /api/transactions.
type TransactionPage struct {
	Items   []Transaction `json:"items"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Pages   int           `json:"pages"`
}

// CategoryBreakdown is one category's share of a monthly summary.
type CategoryBreakdown struct {
	CategoryID       int     `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	CategoryIcon     string  `json:"category_icon"`
	CategoryColor    string  `json:"category_color"`
	Amount           Money   `json:"amount"`
	Percentage       float64 `json:"percentage"`
	TransactionCount int     `json:"transaction_count"`
}

// Summary is the monthly income/expense roll-up.
type Summary struct {
	TotalIncome       Money               `json:"total_income"`
	TotalExpense      Money               `json:"total_expense"`
	Balance           Money               `json:"balance"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
}

// CategoryLimit is a per-category budget request entry.
type CategoryLimit struct {
	CategoryID  int   `json:"category_id" validate:"required"`
	LimitAmount Money `json:"limit_amount" validate:"gt=0"`
}

// BudgetCreate is the body of POST /api/budgets.
type BudgetCreate struct {
	Year           int             `json:"year" validate:"gte=2020,lte=2100"`
	Month          int             `json:"month" validate:"gte=1,lte=12"`
	TotalLimit     Money           `json:"total_limit" validate:"gt=0"`
	CategoryLimits []CategoryLimit `json:"category_limits" validate:"dive"`
}

// BudgetCategory is a per-category budget with spend so far.
type BudgetCategory struct {
	CategoryID     int     `json:"category_id"`
	CategoryName   string  `json:"category_name"`
	CategoryIcon   string  `json:"category_icon"`
	CategoryColor  string  `json:"category_color"`
	LimitAmount    Money   `json:"limit_amount"`
	SpentAmount    Money   `json:"spent_amount"`
	Remaining      Money   `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

// Budget is one month's budget.
type Budget struct {
	ID             string           `json:"id"`
	Year           int              `json:"year"`
	Month          int              `json:"month"`
	TotalLimit     Money            `json:"total_limit"`
	TotalSpent     Money            `json:"total_spent"`
	Remaining      Money            `json:"remaining"`
	PercentageUsed float64          `json:"percentage_used"`
	CategoryLimits []BudgetCategory `json:"category_limits"`
	CreatedAt      time.Time        `json:"created_at"`
}

// BudgetList is GET /api/budgets/history.
type BudgetList struct {
	Items []Budget `json:"items"`
	Total int      `json:"total"`
}

// ChatRequest is the body of POST /api/ai/chat.
type ChatRequest struct {
	Message        string `json:"message" validate:"required,max=2000"`
	ConversationID string `json:"conversation_id,omitempty" validate:"omitempty,uuid"`
}

// ChatMessage is one turn of an AI conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Message        ChatMessage `json:"message"`
	ConversationID string      `json:"conversation_id"`
}

// ChatHistory is a full conversation.
type ChatHistory struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []ChatMessage `json:"messages"`
}

// CategoryPrediction is the forecast for one category.
type CategoryPrediction struct {
	CategoryID       int     `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	CategoryIcon     string  `json:"category_icon"`
	CategoryColor    string  `json:"category_color"`
	PredictedAmount  Money   `json:"predicted_amount"`
	LastMonthAmount  Money   `json:"last_month_amount"`
	ChangePercentage float64 `json:"change_percentage"`
	Trend            string  `json:"trend"`
}

// Prediction is next month's spending forecast.
type Prediction struct {
	NextMonth           string               `json:"next_month"`
	PredictedTotal      Money                `json:"predicted_total"`
	LastMonthTotal      Money                `json:"last_month_total"`
	PotentialSavings    Money                `json:"potential_savings"`
	RiskLevel           string               `json:"risk_level"`
	CategoryPredictions []CategoryPrediction `json:"category_predictions"`
	Recommendations     []string             `json:"recommendations"`
	Explanation         string               `json:"explanation"`
}

// Insight is a single AI tip, warning or achievement.
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Insights is GET /api/ai/insights.
type Insights struct {
	Insights    []Insight `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}
