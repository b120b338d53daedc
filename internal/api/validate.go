// ABOUTME: Local request validation shared by the session and API layers
// ABOUTME: Wraps go-playground/validator and turns failures into readable messages

package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ValidationError is malformed input caught locally. No request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var fieldLabels = map[string]string{
	"email":            "Email",
	"password":         "Password",
	"name":             "Name",
	"current_password": "Current password",
	"new_password":     "New password",
	"confirm_password": "Password confirmation",
	"avatar_url":       "Avatar URL",
	"phone":            "Phone",
	"dob":              "Date of birth",
	"gender":           "Gender",
	"amount":           "Amount",
	"category_id":      "Category",
	"type":             "Type",
	"description":      "Description",
	"date":             "Date",
	"year":             "Year",
	"month":            "Month",
	"total_limit":      "Total limit",
	"limit_amount":     "Category limit",
	"message":          "Message",
	"conversation_id":  "Conversation ID",
	"per_page":         "Page size",
	"page":             "Page",
	"start_date":       "Start date",
	"end_date":         "End date",
}

var validate = newValidator()

// Validate checks s against its validate tags and returns the first failure as a
// *ValidationError, or nil.
func Validate(s any) error {
	return validateStruct(validate, s)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return len(missingPasswordRules(fl.Field().String())) == 0
	})
	return v
}

// missingPasswordRules lists the character classes a password lacks.
func missingPasswordRules(p string) []string {
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	var missing []string
	if !upper {
		missing = append(missing, "one uppercase letter")
	}
	if !lower {
		missing = append(missing, "one lowercase letter")
	}
	if !digit {
		missing = append(missing, "one number")
	}
	return missing
}

// validateStruct returns the first failure as a *ValidationError, or nil.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe.Field(), fe)}
}

// ValidateValue checks one value against a validator tag, reporting failures under field.
func ValidateValue(field string, value any, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return &ValidationError{Field: field, Message: describe(field, verrs[0])}
}

func describe(field string, fe validator.FieldError) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch fe.Tag() {
	case "required":
		if field == "current_password" {
			return "Please enter your current password"
		}
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "password_strength":
		return "New password must have: " + strings.Join(missingPasswordRules(fe.Value().(string)), ", ")
	case "eqfield":
		return "New passwords do not match"
	case "nefield":
		return "New password must be different from current password"
	case "url":
		return label + " must be a valid URL"
	case "datetime":
		return label + " must be formatted as YYYY-MM-DD"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		return label + " must be a UUID"
	}
	return fmt.Sprintf("%s is invalid", label)
}
