package csclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/central-storage/csclient/internal/client"
	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/pkg/csapi"
)

// New creates a Central Storage API client. config is not modified.
func New(ctx context.Context, config *csapi.Config) (csapi.Client, error) {
	if config == nil {
		return nil, csapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, csapi.ErrAPIEndpointRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeEndpoint trims a trailing slash, defaults the scheme to http and
// makes sure the path ends in /api.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")

	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}

	if !strings.HasSuffix(endpoint, constants.APIPathPrefix) {
		endpoint += constants.APIPathPrefix
	}

	return endpoint
}

// NewWithEndpoint creates a client with just an API endpoint (no auth).
func NewWithEndpoint(ctx context.Context, endpoint string) (csapi.Client, error) {
	return New(ctx, &csapi.Config{
		APIEndpoint: endpoint,
	})
}

// NewWithToken creates a client with an API endpoint and a previously issued token.
func NewWithToken(ctx context.Context, endpoint, token string) (csapi.Client, error) {
	return New(ctx, &csapi.Config{
		APIEndpoint: endpoint,
		Token:       token,
	})
}

// NewWithPassword creates a client and logs in with username and password.
func NewWithPassword(ctx context.Context, endpoint, username, password string) (csapi.Client, error) {
	return New(ctx, &csapi.Config{
		APIEndpoint: endpoint,
		Username:    username,
		Password:    password,
	})
}
