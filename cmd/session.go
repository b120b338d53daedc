// ABOUTME: Session diagnostics: status, refresh, endpoint catalog
// ABOUTME: Never prints tokens

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/tui/styles"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect the stored session",
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and token expiry",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runSessionStatus(w, a, time.Now())
	}),
}

var sessionRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runSessionRefresh(ctx, w, a)
	}),
}

var sessionEndpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the backend endpoints this client calls",
	Args:  cobra.NoArgs,
	Run: runWithApp(func(ctx context.Context, w io.Writer, a *app) int {
		return runEndpoints(w, a)
	}),
}

func init() {
	sessionCmd.AddCommand(sessionStatusCmd, sessionRefreshCmd, sessionEndpointsCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionStatus(w io.Writer, a *app, now time.Time) int {
	v := viewOf(a)
	if IsJSONOutput() {
		return printJSON(w, v)
	}
	state := styles.StatusWarning.Render(v.State)
	if v.Authenticated {
		state = styles.StatusOK.Render(v.State)
	}
	fmt.Fprintln(w, styles.KV("State", state))
	fmt.Fprintln(w, styles.KV("Backend", fmt.Sprintf("%s (%s)", v.BaseURL, v.Environment)))
	if v.User != nil {
		fmt.Fprintln(w, styles.KV("User", displayName(a.session.Snapshot())))
	}
	if v.ExpiresAt != nil {
		fmt.Fprintln(w, styles.KV("Token expires", expiresIn(*v.ExpiresAt, now)))
	}
	return exitOK
}

func expiresIn(at, now time.Time) string {
	d := at.Sub(now).Round(time.Second)
	if d <= 0 {
		return fmt.Sprintf("%s (expired)", at.Local().Format(time.DateTime))
	}
	return fmt.Sprintf("%s (in %s)", at.Local().Format(time.DateTime), d)
}

func runSessionRefresh(ctx context.Context, w io.Writer, a *app) int {
	r := a.session.Refresh(ctx)
	if !r.Success {
		return failResult(w, r)
	}
	if IsJSONOutput() {
		return printJSON(w, viewOf(a))
	}
	fmt.Fprintln(w, "Session refreshed.")
	return exitOK
}

type endpointView struct {
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Auth   bool   `json:"auth"`
}

func runEndpoints(w io.Writer, a *app) int {
	catalog := client.Catalog()
	if IsJSONOutput() {
		views := make([]endpointView, len(catalog))
		for i, e := range catalog {
			views[i] = endpointView{Name: e.Name, Method: e.Method, Path: e.Template, Auth: e.Auth}
		}
		return printJSON(w, views)
	}
	fmt.Fprintln(w, styles.Subtitle.Render("Base URL: "+a.cfg.APIBaseURL))
	for _, e := range catalog {
		auth := "public"
		if e.Auth {
			auth = "bearer"
		}
		fmt.Fprintf(w, "%-7s %-32s %-7s %s\n", e.Method, e.Template, auth, e.Name)
	}
	return exitOK
}
