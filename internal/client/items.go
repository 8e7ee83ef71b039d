package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// ItemsClient implements csapi.ItemsClient.
//
// Item reads return the item wrapped with its section and location path;
// List and Get unwrap it, GetRecord and ListRecords keep the wrapper.
type ItemsClient struct {
	*resourceClient[csapi.Item, csapi.ItemCreateRequest, csapi.ItemUpdateRequest]

	cache *responseCache
}

// NewItemsClient creates a new items client. cache may be nil.
func NewItemsClient(httpClient *http.Client, cache *csapi.CacheManager) *ItemsClient {
	client := &ItemsClient{
		resourceClient: newResourceClient[csapi.Item, csapi.ItemCreateRequest, csapi.ItemUpdateRequest](
			httpClient,
			resourcePaths{
				name:        "item",
				readPath:    "/items",
				writePath:   "/items",
				singularKey: "item",
			},
		),
		cache: &responseCache{manager: cache},
	}

	client.decodeRecord = decodeItemRecord
	client.afterWrite = func(ctx context.Context) {
		client.cache.invalidate(ctx, categoriesPath, dashboardPath)
	}

	return client
}

func decodeItemRecord(raw json.RawMessage) (csapi.Item, error) {
	var record csapi.ItemRecord

	err := json.Unmarshal(raw, &record)
	if err != nil {
		return csapi.Item{}, err
	}

	item := record.Item
	if item.Section == nil {
		item.Section = record.Section
	}

	return item, nil
}

// GetRecord implements csapi.ItemsClient.GetRecord.
func (c *ItemsClient) GetRecord(ctx context.Context, id int) (*csapi.ItemRecord, error) {
	if id <= 0 {
		return nil, fmt.Errorf("getting item: %w", csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Get(ctx, c.paths.readURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}

	var record csapi.ItemRecord

	err = json.Unmarshal(resp.Body, &record)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding item record: %w", err))
	}

	if record.GetID() == 0 {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("%w: item", csapi.ErrMissingRecordID))
	}

	return &record, nil
}

// ListRecords implements csapi.ItemsClient.ListRecords.
func (c *ItemsClient) ListRecords(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.ItemRecord], error) {
	err := params.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing item records: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, c.paths.readPath, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing item records: %w", err)
	}

	return decodePage(resp, decodeJSON[csapi.ItemRecord])
}

// UpdateQuantity implements csapi.ItemsClient.UpdateQuantity.
func (c *ItemsClient) UpdateQuantity(ctx context.Context, id, quantity int) (*csapi.QuantityChange, error) {
	if id <= 0 {
		return nil, fmt.Errorf("updating item quantity: %w", csapi.ErrInvalidID)
	}

	body := map[string]int{"quantity": quantity}

	resp, err := c.httpClient.Put(ctx, c.paths.readURL(id)+"/quantity", body)
	if err != nil {
		return nil, fmt.Errorf("updating quantity of item %d: %w", id, err)
	}

	var change csapi.QuantityChange

	err = json.Unmarshal(resp.Body, &change)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding quantity change: %w", err))
	}

	change.ItemID = id

	c.cache.invalidate(ctx, dashboardPath)

	return &change, nil
}

// Categories implements csapi.ItemsClient.Categories.
func (c *ItemsClient) Categories(ctx context.Context) ([]string, error) {
	resp, err := c.cache.get(ctx, c.httpClient, categoriesPath, categoriesTTL)
	if err != nil {
		return nil, fmt.Errorf("listing item categories: %w", err)
	}

	return decodeKeyedList[string](resp, "categories")
}

// LowStock implements csapi.ItemsClient.LowStock.
func (c *ItemsClient) LowStock(ctx context.Context) ([]csapi.Item, error) {
	resp, err := c.httpClient.Get(ctx, "/items/low-stock", nil)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}

	return decodeKeyedList[csapi.Item](resp, "items")
}

// Expiring implements csapi.ItemsClient.Expiring. days <= 0 uses the server default of 30.
func (c *ItemsClient) Expiring(ctx context.Context, days int) ([]csapi.Item, error) {
	var query url.Values
	if days > 0 {
		query = url.Values{"days": []string{strconv.Itoa(days)}}
	}

	resp, err := c.httpClient.Get(ctx, "/items/expiring", query)
	if err != nil {
		return nil, fmt.Errorf("listing expiring items: %w", err)
	}

	return decodeKeyedList[csapi.Item](resp, "items")
}

// CodeExists implements csapi.ItemsClient.CodeExists.
func (c *ItemsClient) CodeExists(ctx context.Context, code string, excludeID int) (bool, error) {
	query := url.Values{"code": []string{code}}
	if excludeID > 0 {
		query.Set("exclude_id", strconv.Itoa(excludeID))
	}

	resp, err := c.httpClient.Get(ctx, "/items/check-code", query)
	if err != nil {
		return false, fmt.Errorf("checking item code %q: %w", code, err)
	}

	raw, err := envelopeField(resp, "exists")
	if err != nil {
		return false, err
	}

	var exists bool

	err = json.Unmarshal(raw, &exists)
	if err != nil {
		return false, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding exists: %w", err))
	}

	return exists, nil
}
