package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// resourcePaths maps one resource type onto its routes and envelope keys.
// Reads live under the authenticated group, writes under /admin for the
// admin-only types.
type resourcePaths struct {
	name        string
	readPath    string
	writePath   string
	singularKey string
}

func (p resourcePaths) readURL(id int) string {
	return p.readPath + "/" + strconv.Itoa(id)
}

func (p resourcePaths) writeURL(id int) string {
	return p.writePath + "/" + strconv.Itoa(id)
}

// resourceClient is the CRUD implementation shared by every hierarchy type.
type resourceClient[R csapi.Identifiable, C, U any] struct {
	httpClient *http.Client
	paths      resourcePaths

	// decodeRecord turns one element of a page's data array into R.
	decodeRecord func(json.RawMessage) (R, error)
	// afterWrite runs after every successful create, update or delete.
	afterWrite func(ctx context.Context)
}

func newResourceClient[R csapi.Identifiable, C, U any](httpClient *http.Client, paths resourcePaths) *resourceClient[R, C, U] {
	return &resourceClient[R, C, U]{
		httpClient:   httpClient,
		paths:        paths,
		decodeRecord: decodeJSON[R],
	}
}

// Get implements csapi.ResourceClient.Get.
func (c *resourceClient[R, C, U]) Get(ctx context.Context, id int) (*R, error) {
	if id <= 0 {
		return nil, fmt.Errorf("getting %s: %w", c.paths.name, csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Get(ctx, c.paths.readURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", c.paths.name, id, err)
	}

	return decodeEntity[R](resp, c.paths.singularKey)
}

// List implements csapi.ResourceClient.List.
func (c *resourceClient[R, C, U]) List(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[R], error) {
	err := params.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.paths.name, err)
	}

	resp, err := c.httpClient.Get(ctx, c.paths.readPath, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.paths.name, err)
	}

	return decodePage(resp, c.decodeRecord)
}

// ListAll implements csapi.ResourceClient.ListAll.
func (c *resourceClient[R, C, U]) ListAll(ctx context.Context, params *csapi.QueryParams) ([]R, error) {
	return csapi.FetchAllPages[R](ctx, c, params, nil)
}

// Create implements csapi.ResourceClient.Create.
func (c *resourceClient[R, C, U]) Create(ctx context.Context, request *C) (*R, error) {
	resp, err := c.httpClient.Post(ctx, c.paths.writePath, request)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.paths.name, err)
	}

	created, err := decodeEntity[R](resp, c.paths.singularKey)
	if err != nil {
		return nil, err
	}

	c.written(ctx)

	return created, nil
}

// Update implements csapi.ResourceClient.Update.
func (c *resourceClient[R, C, U]) Update(ctx context.Context, id int, request *U) (*R, error) {
	if id <= 0 {
		return nil, fmt.Errorf("updating %s: %w", c.paths.name, csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Put(ctx, c.paths.writeURL(id), request)
	if err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", c.paths.name, id, err)
	}

	updated, err := decodeEntity[R](resp, c.paths.singularKey)
	if err != nil {
		return nil, err
	}

	c.written(ctx)

	return updated, nil
}

// Delete implements csapi.ResourceClient.Delete.
func (c *resourceClient[R, C, U]) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("deleting %s: %w", c.paths.name, csapi.ErrInvalidID)
	}

	_, err := c.httpClient.Delete(ctx, c.paths.writeURL(id))
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", c.paths.name, id, err)
	}

	c.written(ctx)

	return nil
}

func (c *resourceClient[R, C, U]) written(ctx context.Context) {
	if c.afterWrite != nil {
		c.afterWrite(ctx)
	}
}

func decodeJSON[T any](raw json.RawMessage) (T, error) {
	var value T

	err := json.Unmarshal(raw, &value)

	return value, err
}

// decodeEntity reads {"<key>": {...}} and requires the entity to carry an id.
func decodeEntity[R csapi.Identifiable](resp *http.Response, key string) (*R, error) {
	raw, err := envelopeField(resp, key)
	if err != nil {
		return nil, err
	}

	var entity R

	err = json.Unmarshal(raw, &entity)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding %s: %w", key, err))
	}

	if entity.GetID() == 0 {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("%w: %s", csapi.ErrMissingRecordID, key))
	}

	return &entity, nil
}

// decodeKeyedList reads {"<key>": [...]}. A null list decodes as empty.
func decodeKeyedList[T any](resp *http.Response, key string) ([]T, error) {
	raw, err := envelopeField(resp, key)
	if err != nil {
		return nil, err
	}

	var list []T

	err = json.Unmarshal(raw, &list)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding %s: %w", key, err))
	}

	if list == nil {
		list = []T{}
	}

	return list, nil
}

func envelopeField(resp *http.Response, key string) (json.RawMessage, error) {
	var envelope map[string]json.RawMessage

	err := json.Unmarshal(resp.Body, &envelope)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, err)
	}

	raw, ok := envelope[key]
	if !ok {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("%w: %s", csapi.ErrMissingEnvelopeField, key))
	}

	return raw, nil
}

// decodePage reads the paginated envelope. One undecodable record fails the whole page.
func decodePage[R csapi.Identifiable](resp *http.Response, decodeRecord func(json.RawMessage) (R, error)) (*csapi.ListResponse[R], error) {
	raw, err := envelopeField(resp, "data")
	if err != nil {
		return nil, err
	}

	var page csapi.Pagination

	err = json.Unmarshal(resp.Body, &page)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding pagination: %w", err))
	}

	var records []json.RawMessage

	err = json.Unmarshal(raw, &records)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding data: %w", err))
	}

	list := &csapi.ListResponse[R]{Pagination: page, Data: make([]R, 0, len(records))}

	for i, record := range records {
		value, err := decodeRecord(record)
		if err != nil {
			return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding record %d: %w", i, err))
		}

		if value.GetID() == 0 {
			return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("record %d: %w", i, csapi.ErrMissingRecordID))
		}

		list.Data = append(list.Data, value)
	}

	return list, nil
}
