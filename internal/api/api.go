// ABOUTME: Typed helpers for the SpendX backend endpoints
// ABOUTME: Routes every call through an authorizing Doer and caches read-mostly responses

package api

import (
	"context"
	"log/slog"

	"github.com/PrathikReddy560/SpendX/cache"
	"github.com/PrathikReddy560/SpendX/internal/client"
)

// Doer performs an authorized request. *session.Manager and *client.Client both satisfy it.
type Doer interface {
	Do(ctx context.Context, req *client.Request, out any) error
}

// Client exposes one method per backend operation.
type Client struct {
	doer  Doer
	cache *cache.Cache
}

// New creates an API client. A nil cache disables response caching.
func New(doer Doer, c *cache.Cache) *Client {
	return &Client{doer: doer, cache: c}
}

// Invalidate drops every cached response.
func (a *Client) Invalidate() {
	if a.cache != nil {
		a.cache.ClearAll()
	}
}

// Cache keys
const (
	keySummary    = "summary:"
	keyCategories = "categories"
	keyPredict    = "ai:predict"
	keyInsights   = "ai:insights"
)

func (a *Client) do(ctx context.Context, req *client.Request, out any) error {
	return a.doer.Do(ctx, req, out)
}

// write performs a mutating call and invalidates cached reads on success.
func (a *Client) write(ctx context.Context, req *client.Request, out any) error {
	if err := a.doer.Do(ctx, req, out); err != nil {
		return err
	}
	a.Invalidate()
	return nil
}

// cached serves key from the cache or fetches it with req.
func cached[T any](ctx context.Context, a *Client, key string, req *client.Request) (*T, error) {
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			if hit, ok := v.(T); ok {
				return &hit, nil
			}
			slog.Warn("Unexpected cached type, refetching", "key", key)
		}
	}

	var out T
	if err := a.doer.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	if a.cache != nil {
		a.cache.Set(key, out)
	}
	return &out, nil
}
