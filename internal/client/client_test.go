package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/pkg/csapi"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, csapi.ErrConfigRequired)
	})

	t.Run("requires API endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &csapi.Config{})
		require.ErrorIs(t, err, csapi.ErrAPIEndpointRequired)
	})

	t.Run("creates client with token", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &csapi.Config{
			APIEndpoint: "http://localhost:8080/api",
			Token:       "test-token",
		})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/api", client.BaseURL())
		assert.True(t, client.Auth().Authenticated())
		assert.Nil(t, client.Cache())
	})

	t.Run("rejects unusable cache config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &csapi.Config{
			APIEndpoint: "http://localhost:8080/api",
			Cache:       &csapi.CacheConfig{Type: csapi.CacheTypeNATS},
		})
		require.ErrorIs(t, err, csapi.ErrNATSConfigRequired)
	})

	t.Run("logs in with username and password", func(t *testing.T) {
		t.Parallel()

		server := newRecordingServer(t, routes{"POST /login": loginHandler(t, "issued-token")})

		client := NewTestClient(t, server.URL, func(c *csapi.Config) {
			c.Username = "admin"
			c.Password = "admin123"
		})
		assert.Equal(t, "issued-token", client.Auth().Token())
	})

	t.Run("token takes precedence over password", func(t *testing.T) {
		t.Parallel()

		server := newRecordingServer(t, routes{"POST /login": loginHandler(t, "issued-token")})

		client := NewTestClient(t, server.URL, func(c *csapi.Config) {
			c.Token = "given-token"
			c.Username = "admin"
			c.Password = "admin123"
		})
		assert.Equal(t, "given-token", client.Auth().Token())
		assert.Zero(t, server.Calls("POST /login"))
	})

	t.Run("login failure fails construction", func(t *testing.T) {
		t.Parallel()

		server := newRecordingServer(t, routes{"POST /login": loginHandler(t, "issued-token")})

		_, err := New(context.Background(), &csapi.Config{
			APIEndpoint: server.URL + "/api",
			Username:    "admin",
			Password:    "wrong",
			RetryMax:    -1,
		})
		require.Error(t, err)
		assert.True(t, csapi.IsUnauthorized(err))
	})
}

func TestClient_SendsUserAgent(t *testing.T) {
	t.Parallel()

	server := newRecordingServer(t, routes{
		"GET /health": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "csctl/test", r.Header.Get("User-Agent"))
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		},
	})

	client := NewTestClient(t, server.URL, func(c *csapi.Config) { c.UserAgent = "csctl/test" })

	_, err := client.Stats().Health(context.Background())
	require.NoError(t, err)
}

func TestClient_ImplementsHierarchyClients(t *testing.T) {
	t.Parallel()

	var clients csapi.HierarchyClients = NewTestClient(t, "http://127.0.0.1:1")

	assert.NotNil(t, clients.Laboratories())
	assert.NotNil(t, clients.Storages())
	assert.NotNil(t, clients.Sections())
	assert.NotNil(t, clients.Items())
}
