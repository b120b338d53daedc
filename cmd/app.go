// ABOUTME: Wiring shared by every command: config, store, session, API client, prefs
// ABOUTME: Also holds output helpers and the error-to-exit-code mapping

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/PrathikReddy560/SpendX/cache"
	"github.com/PrathikReddy560/SpendX/config"
	"github.com/PrathikReddy560/SpendX/internal/api"
	"github.com/PrathikReddy560/SpendX/internal/client"
	"github.com/PrathikReddy560/SpendX/internal/prefs"
	"github.com/PrathikReddy560/SpendX/internal/session"
	"github.com/PrathikReddy560/SpendX/internal/store"
	"github.com/PrathikReddy560/SpendX/logger"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	store   store.Store
	session *session.Manager
	api     *api.Client
	prefs   *prefs.Prefs
	cache   *cache.Cache
}

// newApp wires the client stack on top of st.
func newApp(cfg *config.Config, st store.Store) (*app, error) {
	opts := []client.Option{client.WithUserAgent("spendx-cli/" + version)}
	if cfg.AllProxy != "" {
		t, err := client.ProxyTransport(cfg.AllProxy)
		if err != nil {
			return nil, fmt.Errorf("configuring proxy: %w", err)
		}
		opts = append(opts, client.WithTransport(t))
	}

	c := client.New(cfg.APIBaseURL, opts...)
	mgr := session.NewManager(st, c)
	respCache := cache.New(cfg.CacheDuration())

	a := &app{
		cfg:     cfg,
		store:   st,
		session: mgr,
		api:     api.New(mgr, respCache),
		prefs:   prefs.New(st),
		cache:   respCache,
	}
	mgr.OnChange(func(s session.Session) {
		if !s.IsAuthenticated && !s.IsLoading {
			a.api.Invalidate()
		}
	})
	return a, nil
}

// Close releases background resources.
func (a *app) Close() {
	a.cache.Close()
}

// restore resumes any persisted session. Failures are logged, not fatal:
// commands that need a login report it themselves.
func (a *app) restore(ctx context.Context) {
	r := a.session.Restore(ctx)
	if !r.Success && r.Error != "" {
		slog.Warn("Session restore failed", "error", r.Error)
	}
	slog.Debug("Session ready", "state", a.session.State())
}

// loadApp reads configuration, initialises logging and opens the durable store.
func loadApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, err
	}
	closeLog, err := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogPath()})
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening log file: %w", err)
	}

	a, err := newApp(cfg, store.NewFileStore(cfg.ConfigDir, cfg.Env))
	if err != nil {
		_ = closeLog()
		return nil, func() {}, err
	}
	return a, func() {
		a.Close()
		_ = closeLog()
	}, nil
}

// runWithApp adapts a runner to cobra: it restores the session, runs fn
// against stdout, and exits with fn's code.
func runWithApp(fn func(ctx context.Context, w io.Writer, a *app) int) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := func() int {
			a, cleanup, err := loadApp()
			defer cleanup()
			if err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				return exitUsage
			}
			a.restore(ctx)
			return fn(ctx, os.Stdout, a)
		}()
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}
}

// exitCodeFor maps an error to 1 (operation failed) or 2 (bad input or no connection).
func exitCodeFor(err error) int {
	var verr *api.ValidationError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &verr), client.IsTransport(err):
		return exitUsage
	}
	return exitFailed
}

// fail prints err's user-facing message and returns its exit code.
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %s\n", client.MessageOf(err))
	return exitCodeFor(err)
}

// failResult reports an unsuccessful session operation.
func failResult(w io.Writer, r session.Result) int {
	fmt.Fprintf(w, "Error: %s\n", r.Error)
	if code := exitCodeFor(r.Err()); code != exitOK {
		return code
	}
	return exitFailed
}

// requireLogin reports whether a user is signed in, printing a hint if not.
func requireLogin(w io.Writer, a *app) bool {
	if a.session.IsAuthenticated() {
		return true
	}
	fmt.Fprintln(w, "Error: not logged in. Run 'spendx login' first.")
	return false
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

// currency returns the display currency, falling back to the default on storage errors.
func (a *app) currency() prefs.Currency {
	c, err := a.prefs.Currency()
	if err != nil {
		slog.Warn("Could not read currency preference", "error", err)
	}
	return c
}

// isTerminal reports whether f is an interactive terminal.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// readLines reads up to n trimmed lines from r, for secrets piped on stdin.
func readLines(r io.Reader, n int) ([]string, error) {
	sc := bufio.NewScanner(r)
	lines := make([]string, 0, n)
	for len(lines) < n && sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) < n {
		return nil, fmt.Errorf("expected %d line(s) on stdin, got %d", n, len(lines))
	}
	return lines, nil
}
