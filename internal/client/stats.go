package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// StatsClient implements csapi.StatsClient.
type StatsClient struct {
	httpClient *http.Client
	cache      *responseCache
}

// NewStatsClient creates a new stats client. cache may be nil.
func NewStatsClient(httpClient *http.Client, cache *csapi.CacheManager) *StatsClient {
	return &StatsClient{
		httpClient: httpClient,
		cache:      &responseCache{manager: cache},
	}
}

// Dashboard implements csapi.StatsClient.Dashboard.
func (c *StatsClient) Dashboard(ctx context.Context) (*csapi.DashboardStats, error) {
	resp, err := c.cache.get(ctx, c.httpClient, dashboardPath, statsTTL)
	if err != nil {
		return nil, fmt.Errorf("getting dashboard stats: %w", err)
	}

	return decodeBody[csapi.DashboardStats](resp, "dashboard stats")
}

// User implements csapi.StatsClient.User.
func (c *StatsClient) User(ctx context.Context) (*csapi.UserStats, error) {
	resp, err := c.httpClient.Get(ctx, "/stats/user", nil)
	if err != nil {
		return nil, fmt.Errorf("getting user stats: %w", err)
	}

	return decodeBody[csapi.UserStats](resp, "user stats")
}

// Health implements csapi.StatsClient.Health. It needs no token.
func (c *StatsClient) Health(ctx context.Context) (*csapi.HealthStatus, error) {
	resp, err := c.httpClient.Get(ctx, "/health", nil)
	if err != nil {
		return nil, fmt.Errorf("checking health: %w", err)
	}

	return decodeBody[csapi.HealthStatus](resp, "health status")
}

func decodeBody[T any](resp *http.Response, what string) (*T, error) {
	var value T

	err := json.Unmarshal(resp.Body, &value)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding %s: %w", what, err))
	}

	return &value, nil
}
