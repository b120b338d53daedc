// ABOUTME: Authentication commands: login, signup, logout, whoami
// ABOUTME: Prompts with forms on a terminal, or reads the password from stdin for scripts

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/session"
	"github.com/PrathikReddy560/SpendX/internal/tui/forms"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

var (
	authEmail     string
	authName      string
	passwordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to SpendX",
	Long: `Log in with email and password. On a terminal, missing values are prompted for.

Example:
  echo "$SPENDX_PASSWORD" | spendx login --email ann@example.com --password-stdin`,
	Args: cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		creds := forms.Credentials{Email: authEmail}
		switch {
		case passwordStdin:
			lines, err := readLines(os.Stdin, 1)
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
			creds.Password = lines[0]
		case isTerminal(os.Stdin):
			if err := forms.LoginForm(&creds).Run(); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
		}
		return runLogin(ctx, w, a, creds)
	}),
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a SpendX account and log in",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		in := forms.Signup{Name: authName, Email: authEmail}
		switch {
		case passwordStdin:
			lines, err := readLines(os.Stdin, 1)
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
			in.Password = lines[0]
		case isTerminal(os.Stdin):
			if err := forms.SignupForm(&in).Run(); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
		}
		return runSignup(ctx, w, a, in)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget stored credentials",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runLogout(ctx, w, a)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runWhoami(w, a)
	}),
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "Display name")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
}

// sessionView is the JSON shape of a session. Tokens are never printed.
type sessionView struct {
	State         string           `json:"state"`
	Authenticated bool             `json:"authenticated"`
	User          *api.UserProfile `json:"user,omitempty"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	BaseURL       string           `json:"base_url"`
	Environment   string           `json:"environment"`
}

func viewOf(a *app) sessionView {
	s := a.session.Snapshot()
	v := sessionView{
		State:         s.State.String(),
		Authenticated: s.IsAuthenticated,
		User:          s.User,
		BaseURL:       a.cfg.APIBaseURL,
		Environment:   a.cfg.Env,
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt
		v.ExpiresAt = &exp
	}
	return v
}

func runLogin(ctx context.Context, w io.Writer, a *app, creds forms.Credentials) int {
	r := a.session.Login(ctx, strings.TrimSpace(creds.Email), creds.Password)
	if !r.Success {
		return failResult(w, r)
	}
	return printWelcome(w, a, "Logged in")
}

func runSignup(ctx context.Context, w io.Writer, a *app, in forms.Signup) int {
	r := a.session.Signup(ctx, strings.TrimSpace(in.Email), in.Password, strings.TrimSpace(in.Name))
	if !r.Success {
		return failResult(w, r)
	}
	return printWelcome(w, a, "Account created")
}

func printWelcome(w io.Writer, a *app, verb string) int {
	if IsJSONOutput() {
		return printJSON(w, viewOf(a))
	}
	s := a.session.Snapshot()
	fmt.Fprintf(w, "%s as %s\n", verb, styles.ValueStyle.Render(displayName(s)))
	return exitOK
}

func runLogout(ctx context.Context, w io.Writer, a *app) int {
	r := a.session.Logout(ctx)
	if !r.Success {
		return failResult(w, r)
	}
	if IsJSONOutput() {
		return printJSON(w, viewOf(a))
	}
	fmt.Fprintln(w, "Logged out.")
	return exitOK
}

func runWhoami(w io.Writer, a *app) int {
	if IsJSONOutput() {
		code := printJSON(w, viewOf(a))
		if !a.session.IsAuthenticated() {
			return exitFailed
		}
		return code
	}
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(w, "Not logged in.")
		return exitFailed
	}
	fmt.Fprintln(w, displayName(a.session.Snapshot()))
	return exitOK
}

func displayName(s session.Session) string {
	if s.User == nil {
		return "unknown user"
	}
	if s.User.Name == "" {
		return s.User.Email
	}
	return fmt.Sprintf("%s <%s>", s.User.Name, s.User.Email)
}
