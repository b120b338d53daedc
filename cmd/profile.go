// ABOUTME: Profile and password commands
// ABOUTME: Shows spending totals, updates profile fields, changes the password

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/tui/forms"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

var (
	profileName          string
	profilePhone         string
	profileAvatarURL     string
	profileDOB           string
	profileGender        string
	profileNotifications bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runProfileShow(ctx, w, a)
	}),
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update only the fields you pass.

Example:
  spendx profile update --name "Ann Lee" --notifications=false`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		update := profileUpdateFromFlags(cmd)
		runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
			return runProfileUpdate(ctx, w, a, update)
		})(cmd, args)
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password",
	Long: `Change your password. You are logged out afterwards.

On a terminal you are prompted. Otherwise three lines are read from stdin:
current password, new password, confirmation.`,
	Args: cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		var p forms.PasswordChange
		if isTerminal(os.Stdin) {
			if err := forms.PasswordForm(&p).Run(); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
		} else {
			lines, err := readLines(os.Stdin, 3)
			if err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
				return exitUsage
			}
			p = forms.PasswordChange{Current: lines[0], New: lines[1], Confirm: lines[2]}
		}
		return runChangePassword(ctx, w, a, p)
	}),
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileName, "name", "", "Display name")
	f.StringVar(&profilePhone, "phone", "", "Phone number")
	f.StringVar(&profileAvatarURL, "avatar-url", "", "Avatar image URL")
	f.StringVar(&profileDOB, "dob", "", "Date of birth (YYYY-MM-DD)")
	f.StringVar(&profileGender, "gender", "", "Gender")
	f.BoolVar(&profileNotifications, "notifications", true, "Enable notifications")

	profileCmd.AddCommand(profileUpdateCmd)
	rootCmd.AddCommand(profileCmd, passwordCmd)
}

// profileUpdateFromFlags includes only the flags the user actually set.
func profileUpdateFromFlags(cmd *cobra.Command) api.ProfileUpdate {
	var u api.ProfileUpdate
	changed := cmd.Flags().Changed
	if changed("name") {
		u.Name = &profileName
	}
	if changed("phone") {
		u.Phone = &profilePhone
	}
	if changed("avatar-url") {
		u.AvatarURL = &profileAvatarURL
	}
	if changed("dob") {
		u.DOB = &profileDOB
	}
	if changed("gender") {
		u.Gender = &profileGender
	}
	if changed("notifications") {
		u.NotificationsEnabled = &profileNotifications
	}
	return u
}

func runProfileShow(ctx context.Context, w io.Writer, a *app) int {
	if !requireLogin(w, a) {
		return exitFailed
	}
	p, err := a.api.Profile(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, p)
	}
	fmt.Fprintln(w, formatProfile(p, a))
	return exitOK
}

func formatProfile(p *api.UserProfile, a *app) string {
	cur := a.currency()
	lines := []string{
		styles.Title.Render(p.Name),
		styles.KV("Email", p.Email),
	}
	if p.Phone != nil && *p.Phone != "" {
		lines = append(lines, styles.KV("Phone", *p.Phone))
	}
	if p.DOB != nil && *p.DOB != "" {
		lines = append(lines, styles.KV("Born", *p.DOB))
	}
	plan := "Free"
	if p.IsPremium {
		plan = "Premium"
	}
	lines = append(lines,
		styles.KV("Plan", plan),
		styles.KV("Notifications", onOff(p.NotificationsEnabled)),
		styles.KV("This month", cur.FormatAmount(float64(p.CurrentMonthSpent))),
		styles.KV("Total spent", cur.FormatAmount(float64(p.TotalExpenses))),
		styles.KV("Total income", cur.FormatAmount(float64(p.TotalIncome))),
	)
	return strings.Join(lines, "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func runProfileUpdate(ctx context.Context, w io.Writer, a *app, update api.ProfileUpdate) int {
	r := a.session.UpdateProfile(ctx, update)
	if !r.Success {
		return failResult(w, r)
	}
	if IsJSONOutput() {
		return printJSON(w, a.session.Snapshot().User)
	}
	fmt.Fprintln(w, "Profile updated.")
	return exitOK
}

func runChangePassword(ctx context.Context, w io.Writer, a *app, p forms.PasswordChange) int {
	r := a.session.ChangePassword(ctx, p.Current, p.New, p.Confirm)
	if !r.Success {
		return failResult(w, r)
	}
	fmt.Fprintln(w, "Password changed. Log in again with your new password.")
	return exitOK
}
