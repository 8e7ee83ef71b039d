package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-storage/csclient/pkg/csapi"
)

// routes maps "METHOD /path" to a handler. Paths are relative to /api.
type routes map[string]http.HandlerFunc

// recordingServer serves routes and counts calls per route.
type recordingServer struct {
	*httptest.Server

	mu    sync.Mutex
	calls map[string]int
}

func (s *recordingServer) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[route]
}

func newRecordingServer(t *testing.T, handlers routes) *recordingServer {
	t.Helper()

	server := &recordingServer{calls: map[string]int{}}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path[len("/api"):]

		server.mu.Lock()
		server.calls[route]++
		server.mu.Unlock()

		handler, ok := handlers[route]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route " + route})

			return
		}

		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return server
}

// NewTestClient creates a client for a test server without authentication or retries.
func NewTestClient(t *testing.T, baseURL string, opts ...func(*csapi.Config)) *Client {
	t.Helper()

	config := &csapi.Config{APIEndpoint: baseURL + "/api", RetryMax: -1}
	for _, opt := range opts {
		opt(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

func page(data interface{}, total, pageNum, pageSize int) map[string]interface{} {
	totalPages := (total + pageSize - 1) / pageSize

	return map[string]interface{}{
		"data":        data,
		"total":       total,
		"page":        pageNum,
		"page_size":   pageSize,
		"total_pages": totalPages,
		"has_next":    pageNum < totalPages,
		"has_prev":    pageNum > 1,
	}
}

// decodeRequest runs on the server goroutine, so it must not call FailNow.
func decodeRequest(t *testing.T, r *http.Request, into interface{}) {
	t.Helper()

	assert.NoError(t, json.NewDecoder(r.Body).Decode(into))
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)

	return n
}
