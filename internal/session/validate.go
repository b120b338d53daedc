// ABOUTME: Local input validation for login, signup and password changes
// ABOUTME: Rejects malformed input before any network call is made

package session

import "github.com/PrathikReddy560/SpendX/internal/api"

// ValidationError is malformed input caught locally. No request was sent.
type ValidationError = api.ValidationError

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=100"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type passwordInput struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8,max=128,password_strength,nefield=Current"`
	Confirm string `json:"confirm_password" validate:"required,eqfield=New"`
}
