// ABOUTME: Auth interceptor that attaches bearer tokens to outbound requests
// ABOUTME: Reads the current token per request and never mutates session state

package client

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
)

type anonymousKey struct{}

func withAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, anonymousKey{}, true)
}

func isAnonymous(ctx context.Context) bool {
	v, _ := ctx.Value(anonymousKey{}).(bool)
	return v
}

// tokenSourceFunc adapts a function to oauth2.TokenSource.
type tokenSourceFunc func() (*oauth2.Token, error)

func (f tokenSourceFunc) Token() (*oauth2.Token, error) { return f() }

// AuthTransport sets "Authorization: Bearer <token>" from Source on every request.
// A missing token is not an error: the request goes out unauthenticated and the
// server decides. Requests that already carry an Authorization header, or were
// built as anonymous, pass through untouched.
type AuthTransport struct {
	Base   http.RoundTripper
	Source oauth2.TokenSource
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Source == nil || isAnonymous(req.Context()) || req.Header.Get("Authorization") != "" {
		return t.base().RoundTrip(req)
	}

	tok, err := t.Source.Token()
	if err != nil {
		slog.Debug("Token source failed, sending request unauthenticated", "error", err)
		return t.base().RoundTrip(req)
	}
	if tok == nil || tok.AccessToken == "" {
		return t.base().RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	authed := req.Clone(req.Context())
	tok.SetAuthHeader(authed)

	resp, err := t.base().RoundTrip(authed)
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		slog.Debug("Bearer token rejected", "method", req.Method, "path", req.URL.Path)
	}
	return resp, err
}
