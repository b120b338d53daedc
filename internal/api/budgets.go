package api

import (
	"context"

	"github.com/PrathikReddy560/SpendX/internal/client"
)

// CurrentBudget returns this month's budget.
func (a *Client) CurrentBudget(ctx context.Context) (*Budget, error) {
	var b Budget
	if err := a.do(ctx, client.NewRequest(client.CurrentBudget), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// SetBudget creates or replaces the budget for in.Year/in.Month.
func (a *Client) SetBudget(ctx context.Context, in BudgetCreate) (*Budget, error) {
	if in.CategoryLimits == nil {
		in.CategoryLimits = []CategoryLimit{}
	}
	if err := Validate(in); err != nil {
		return nil, err
	}
	var b Budget
	if err := a.write(ctx, client.NewRequest(client.SetBudget).WithBody(in), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// BudgetHistory lists past budgets, newest first.
func (a *Client) BudgetHistory(ctx context.Context) (*BudgetList, error) {
	var l BudgetList
	if err := a.do(ctx, client.NewRequest(client.BudgetHistory), &l); err != nil {
		return nil, err
	}
	return &l, nil
}
