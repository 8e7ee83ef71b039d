package client

import (
	"context"
	"net/http"
	"time"

	internalhttp "github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// Cached read paths.
const (
	categoriesPath = "/items/categories"
	dashboardPath  = "/stats/dashboard"
)

// responseCache serves read-mostly GET responses from a csapi.CacheManager.
// A nil manager turns every call into a plain request.
type responseCache struct {
	manager *csapi.CacheManager
}

func (c *responseCache) key(path string) string {
	return c.manager.GetCacheKey(http.MethodGet, path, nil)
}

// get returns the cached body for path or fetches and stores it for the TTL ttlOf picks.
func (c *responseCache) get(
	ctx context.Context,
	httpClient *internalhttp.Client,
	path string,
	ttlOf func(*csapi.CacheOptions) time.Duration,
) (*internalhttp.Response, error) {
	if c == nil || c.manager == nil {
		return httpClient.Get(ctx, path, nil)
	}

	key := c.key(path)

	data, err := c.manager.Get(ctx, key)
	if err == nil {
		return &internalhttp.Response{StatusCode: http.StatusOK, Body: data}, nil
	}

	resp, err := httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	// A failed cache write only costs a refetch.
	_ = c.manager.Set(ctx, key, resp.Body, ttlOf(c.manager.Options()))

	return resp, nil
}

func (c *responseCache) invalidate(ctx context.Context, paths ...string) {
	if c == nil || c.manager == nil {
		return
	}

	for _, path := range paths {
		_ = c.manager.Invalidate(ctx, c.key(path))
	}
}

func categoriesTTL(opts *csapi.CacheOptions) time.Duration {
	return opts.CategoriesTTL
}

func statsTTL(opts *csapi.CacheOptions) time.Duration {
	return opts.StatsTTL
}
