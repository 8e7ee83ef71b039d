package client

import (
	"context"
	"fmt"

	"github.com/central-storage/csclient/internal/auth"
	"github.com/central-storage/csclient/internal/constants"
	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// Client implements the csapi.Client interface.
type Client struct {
	httpClient *http.Client
	session    *auth.Session
	baseURL    string
	logger     csapi.Logger
	cache      *csapi.CacheManager

	// Resource clients
	laboratories *LaboratoriesClient
	storages     *StoragesClient
	sections     *SectionsClient
	items        *ItemsClient
	movements    *MovementsClient
	users        *UsersClient
	auth         *AuthClient
	stats        *StatsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *csapi.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax != 0 || config.RetryWaitMin > 0 || config.RetryWaitMax > 0 {
		retryMax := config.RetryMax
		if retryMax == 0 {
			retryMax = constants.DefaultRetryMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(retryMax, config.RetryWaitMin, config.RetryWaitMax))
	}

	return httpOpts
}

// New creates a client for config.APIEndpoint, which must already be the full API base.
// When config carries a username and password but no token, New logs in.
func New(ctx context.Context, config *csapi.Config) (*Client, error) {
	if config == nil {
		return nil, csapi.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, csapi.ErrAPIEndpointRequired
	}

	var sessionOpts []auth.SessionOption
	if config.TokenPersister != nil {
		sessionOpts = append(sessionOpts, auth.WithPersister(config.TokenPersister))
	}

	session := auth.NewSession(config.Token, sessionOpts...)

	var cache *csapi.CacheManager

	if config.Cache != nil {
		manager, err := csapi.NewCacheManagerFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating cache: %w", err)
		}

		cache = manager
	}

	client := &Client{
		httpClient: http.NewClient(config.APIEndpoint, session, createHTTPClientOptions(config)...),
		session:    session,
		baseURL:    config.APIEndpoint,
		logger:     config.Logger,
		cache:      cache,
	}

	client.initializeResourceClients()

	if config.Token == "" && config.Username != "" && config.Password != "" {
		_, err := client.auth.Login(ctx, config.Username, config.Password)
		if err != nil {
			return nil, err
		}
	}

	return client, nil
}

func (c *Client) initializeResourceClients() {
	c.laboratories = NewLaboratoriesClient(c.httpClient)
	c.storages = NewStoragesClient(c.httpClient)
	c.sections = NewSectionsClient(c.httpClient)
	c.items = NewItemsClient(c.httpClient, c.cache)
	c.movements = NewMovementsClient(c.httpClient, c.cache)
	c.users = NewUsersClient(c.httpClient)
	c.auth = NewAuthClient(c.httpClient, c.session)
	c.stats = NewStatsClient(c.httpClient, c.cache)

	// Hierarchy writes change the dashboard counters.
	invalidateDashboard := func(ctx context.Context) {
		c.items.cache.invalidate(ctx, dashboardPath)
	}

	c.laboratories.afterWrite = invalidateDashboard
	c.storages.afterWrite = invalidateDashboard
	c.sections.afterWrite = invalidateDashboard
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cache returns the response cache, or nil when caching is disabled.
func (c *Client) Cache() *csapi.CacheManager {
	return c.cache
}

// Laboratories implements csapi.Client.Laboratories.
func (c *Client) Laboratories() csapi.LaboratoriesClient {
	return c.laboratories
}

// Storages implements csapi.Client.Storages.
func (c *Client) Storages() csapi.StoragesClient {
	return c.storages
}

// Sections implements csapi.Client.Sections.
func (c *Client) Sections() csapi.SectionsClient {
	return c.sections
}

// Items implements csapi.Client.Items.
func (c *Client) Items() csapi.ItemsClient {
	return c.items
}

// Movements implements csapi.Client.Movements.
func (c *Client) Movements() csapi.MovementsClient {
	return c.movements
}

// Users implements csapi.Client.Users.
func (c *Client) Users() csapi.UsersClient {
	return c.users
}

// Auth implements csapi.Client.Auth.
func (c *Client) Auth() csapi.AuthClient {
	return c.auth
}

// Stats implements csapi.Client.Stats.
func (c *Client) Stats() csapi.StatsClient {
	return c.stats
}

var _ csapi.Client = (*Client)(nil)
