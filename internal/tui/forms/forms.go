// ABOUTME: Interactive huh forms for login, signup and password change
// ABOUTME: Field validators reuse the same rules the session layer enforces

package forms

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/PrathikReddy560/SpendX/internal/api"
)

// Credentials is what the login form collects.
type Credentials struct {
	Email    string
	Password string
}

// Signup is what the signup form collects.
type Signup struct {
	Name     string
	Email    string
	Password string
}

// PasswordChange is what the change-password form collects.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
}

// Theme returns the huh theme used by every spendx form.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	indigo := lipgloss.Color("#6366F1")
	indigoLight := lipgloss.Color("#818CF8")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(indigo).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(indigo)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(indigoLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(indigo)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(indigo)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(indigo).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// LoginForm prompts for email and password into c. Prefilled values are kept.
func LoginForm(c *Credentials) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&c.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&c.Password).
				Validate(field("password", "required")),
		).Title("Welcome back").
			Description("Log in to SpendX"),
	).WithTheme(Theme())
}

// SignupForm prompts for name, email and password into s.
func SignupForm(s *Signup) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				CharLimit(100).
				Value(&s.Name).
				Validate(field("name", "required,min=2,max=100")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&s.Email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				Description("At least 8 characters").
				EchoMode(huh.EchoModePassword).
				Value(&s.Password).
				Validate(field("password", "required,min=8,max=100")),
		).Title("Create account").
			Description("Start tracking your spending"),
	).WithTheme(Theme())
}

// PasswordForm prompts for the current password and a confirmed new one.
func PasswordForm(p *PasswordChange) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Current password").
				EchoMode(huh.EchoModePassword).
				Value(&p.Current).
				Validate(field("current_password", "required")),
			huh.NewInput().
				Title("New password").
				Description("8+ characters with upper, lower case and a number").
				EchoMode(huh.EchoModePassword).
				Value(&p.New).
				Validate(p.validateNew),
			huh.NewInput().
				Title("Confirm new password").
				EchoMode(huh.EchoModePassword).
				Value(&p.Confirm).
				Validate(p.validateConfirm),
		).Title("Change password").
			Description("You will be logged out afterwards"),
	).WithTheme(Theme())
}

func (p *PasswordChange) validateNew(s string) error {
	if err := field("new_password", "required,min=8,max=128,password_strength")(s); err != nil {
		return err
	}
	if s == p.Current {
		return &api.ValidationError{Field: "new_password", Message: "New password must be different from current password"}
	}
	return nil
}

func (p *PasswordChange) validateConfirm(s string) error {
	if s != p.New {
		return &api.ValidationError{Field: "confirm_password", Message: "New passwords do not match"}
	}
	return nil
}

func validateEmail(s string) error {
	return field("email", "required,email")(strings.TrimSpace(s))
}

func field(name, tag string) func(string) error {
	return func(s string) error {
		return api.ValidateValue(name, s, tag)
	}
}
