// ABOUTME: HTTP request executor for the SpendX backend API
// ABOUTME: Encodes JSON, bounds every call with a timeout, and normalizes failures to APIError

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RequestTimeout bounds every backend call.
const RequestTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 4 << 20

// Client is the API client for the SpendX backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	mu     sync.RWMutex
	tokens oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc's transport and settings. Its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTransport sets the base round tripper under the auth interceptor.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Transport = rt
	}
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(c *Client) { c.tokens = src }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a new API client with the given base URL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "spendx-cli",
	}
	for _, opt := range opts {
		opt(c)
	}

	var base http.RoundTripper
	var jar http.CookieJar
	if c.httpClient != nil {
		base = c.httpClient.Transport
		jar = c.httpClient.Jar
	}
	c.httpClient = &http.Client{
		Timeout:   RequestTimeout,
		Jar:       jar,
		Transport: &AuthTransport{Base: base, Source: tokenSourceFunc(c.currentTokenSource)},
	}
	return c
}

// BaseURL returns the backend URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetTokenSource swaps the token source consulted by the auth interceptor.
func (c *Client) SetTokenSource(src oauth2.TokenSource) {
	c.mu.Lock()
	c.tokens = src
	c.mu.Unlock()
}

func (c *Client) currentTokenSource() (*oauth2.Token, error) {
	c.mu.RLock()
	src := c.tokens
	c.mu.RUnlock()
	if src == nil {
		return nil, nil
	}
	return src.Token()
}

// Request describes one call. Anonymous requests never carry a bearer token.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Header    http.Header
	Anonymous bool
}

// NewRequest builds a request for an endpoint, expanding its path template with args.
func NewRequest(e Endpoint, args ...string) *Request {
	return &Request{
		Method:    e.Method,
		Path:      e.Path(args...),
		Anonymous: !e.Auth,
	}
}

// WithBody sets the JSON body.
func (r *Request) WithBody(v any) *Request {
	r.Body = v
	return r
}

// WithQuery sets the query parameters.
func (r *Request) WithQuery(q url.Values) *Request {
	r.Query = q
	return r
}

// WithHeader adds a header value.
func (r *Request) WithHeader(key, value string) *Request {
	if r.Header == nil {
		r.Header = http.Header{}
	}
	r.Header.Set(key, value)
	return r
}

// Do performs the request and decodes a 2xx JSON body into out (which may be nil).
// Every other outcome is returned as *APIError.
func (c *Client) Do(ctx context.Context, r *Request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("API request failed", "method", r.Method, "path", r.Path, "error", err)
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	slog.Debug("API request",
		"method", r.Method,
		"path", r.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", req.Header.Get("X-Request-ID"),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	return decodeBody(resp.Body, out)
}

func (c *Client) newHTTPRequest(ctx context.Context, r *Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL + r.Path
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.Anonymous {
		req = req.WithContext(withAnonymous(req.Context()))
	}
	return req, nil
}

// handleRequestError converts transport failures into a status-0 APIError
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &APIError{Message: "request canceled", Err: err}
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &APIError{Message: "request timed out", Err: err}
	}
	return &APIError{
		Message: fmt.Sprintf("cannot connect to backend at %s: %v", c.baseURL, err),
		Err:     err,
	}
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	msg := parseErrorMessage(body)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func decodeBody(r io.Reader, out any) error {
	data, err := io.ReadAll(io.LimitReader(r, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}
