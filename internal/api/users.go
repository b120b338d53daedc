package api

import (
	"context"

	"github.com/PrathikReddy560/SpendX/internal/client"
)

// Profile fetches the current user's profile, including spending totals.
func (a *Client) Profile(ctx context.Context) (*UserProfile, error) {
	var u UserProfile
	if err := a.do(ctx, client.NewRequest(client.GetProfile), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile PATCHes the supplied fields and returns the server's record.
func (a *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*UserProfile, error) {
	if update.Empty() {
		return nil, &ValidationError{Message: "Nothing to update"}
	}
	if err := Validate(update); err != nil {
		return nil, err
	}
	var u UserProfile
	if err := a.write(ctx, client.NewRequest(client.UpdateProfile).WithBody(update), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ChangePassword changes the password. Callers are expected to drop the session afterwards.
func (a *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return a.do(ctx, client.NewRequest(client.ChangePassword).WithBody(req), nil)
}
