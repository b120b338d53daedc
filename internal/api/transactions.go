// ABOUTME: Transaction endpoints: list, create, get, update, delete, summary, categories
// ABOUTME: Builds list filters into the backend's query parameters

package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/PrathikReddy560/SpendX/internal/client"
)

// DefaultPerPage matches the backend's default page size.
const DefaultPerPage = 20

// TransactionFilter narrows GET /api/transactions. Zero values are omitted.
type TransactionFilter struct {
	Page       int    `json:"page" validate:"gte=0"`
	PerPage    int    `json:"per_page" validate:"gte=0,lte=100"`
	StartDate  string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	CategoryID int    `json:"category_id" validate:"gte=0"`
	Type       string `json:"type" validate:"omitempty,oneof=income expense"`
}

// Query encodes the filter.
func (f TransactionFilter) Query() url.Values {
	q := url.Values{}
	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	if f.StartDate != "" {
		q.Set("start_date", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("end_date", f.EndDate)
	}
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.Itoa(f.CategoryID))
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	return q
}

// ListTransactions returns one page of transactions.
func (a *Client) ListTransactions(ctx context.Context, f TransactionFilter) (*TransactionPage, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	var page TransactionPage
	if err := a.do(ctx, client.NewRequest(client.ListTransactions).WithQuery(f.Query()), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateTransaction records a new transaction.
func (a *Client) CreateTransaction(ctx context.Context, in TransactionCreate) (*Transaction, error) {
	if in.Type == "" {
		in.Type = TypeExpense
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var tx Transaction
	if err := a.write(ctx, client.NewRequest(client.CreateTransaction).WithBody(in), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetTransaction fetches one transaction by ID.
func (a *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	var tx Transaction
	if err := a.do(ctx, client.NewRequest(client.GetTransaction, id), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction PATCHes the supplied fields.
func (a *Client) UpdateTransaction(ctx context.Context, id string, in TransactionUpdate) (*Transaction, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var tx Transaction
	if err := a.write(ctx, client.NewRequest(client.UpdateTransaction, id).WithBody(in), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes a transaction.
func (a *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	var resp MessageResponse
	return a.write(ctx, client.NewRequest(client.DeleteTransaction, id), &resp)
}

// Summary returns the income/expense roll-up for a month.
func (a *Client) Summary(ctx context.Context, year, month int) (*Summary, error) {
	if year < 2020 || year > 2100 {
		return nil, &ValidationError{Field: "year", Message: "Year must be between 2020 and 2100"}
	}
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Message: "Month must be between 1 and 12"}
	}
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(month))
	key := fmt.Sprintf("%s%04d-%02d", keySummary, year, month)
	return cached[Summary](ctx, a, key, client.NewRequest(client.TransactionSummary).WithQuery(q))
}

// Categories lists the transaction categories.
func (a *Client) Categories(ctx context.Context) ([]Category, error) {
	cats, err := cached[[]Category](ctx, a, keyCategories, client.NewRequest(client.TransactionCategories))
	if err != nil {
		return nil, err
	}
	return *cats, nil
}

// validateID rejects anything that is not a UUID before it reaches a URL path.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("invalid transaction ID %q", id)}
	}
	return nil
}
