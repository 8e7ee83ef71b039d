package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// MovementsClient implements csapi.MovementsClient.
type MovementsClient struct {
	httpClient *http.Client
	cache      *responseCache
}

// NewMovementsClient creates a new movements client. cache may be nil.
func NewMovementsClient(httpClient *http.Client, cache *csapi.CacheManager) *MovementsClient {
	return &MovementsClient{
		httpClient: httpClient,
		cache:      &responseCache{manager: cache},
	}
}

// List implements csapi.MovementsClient.List.
func (c *MovementsClient) List(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.Movement], error) {
	err := params.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, "/movements", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	return decodePage(resp, decodeJSON[csapi.Movement])
}

// ListAll implements csapi.MovementsClient.ListAll.
func (c *MovementsClient) ListAll(ctx context.Context, params *csapi.QueryParams) ([]csapi.Movement, error) {
	return csapi.FetchAllPages[csapi.Movement](ctx, c, params, nil)
}

// Create implements csapi.MovementsClient.Create. The server adjusts the item quantity in the same transaction.
func (c *MovementsClient) Create(ctx context.Context, request *csapi.MovementCreateRequest) (*csapi.Movement, error) {
	resp, err := c.httpClient.Post(ctx, "/admin/movements", request)
	if err != nil {
		return nil, fmt.Errorf("creating movement: %w", err)
	}

	movement, err := decodeEntity[csapi.Movement](resp, "movement")
	if err != nil {
		return nil, err
	}

	c.cache.invalidate(ctx, dashboardPath)

	return movement, nil
}

// Delete implements csapi.MovementsClient.Delete.
func (c *MovementsClient) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("deleting movement: %w", csapi.ErrInvalidID)
	}

	_, err := c.httpClient.Delete(ctx, "/admin/movements/"+strconv.Itoa(id))
	if err != nil {
		return fmt.Errorf("deleting movement %d: %w", id, err)
	}

	c.cache.invalidate(ctx, dashboardPath)

	return nil
}

// Export implements csapi.MovementsClient.Export. Paging fields are ignored by the server.
func (c *MovementsClient) Export(ctx context.Context, params *csapi.QueryParams) ([]byte, error) {
	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:  "GET",
		Path:    "/movements/export",
		Query:   params.ToValues(),
		Headers: map[string]string{"Accept": "text/csv"},
	})
	if err != nil {
		return nil, fmt.Errorf("exporting movements: %w", err)
	}

	return resp.Body, nil
}
