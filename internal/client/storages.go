package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// StoragesClient implements csapi.StoragesClient.
type StoragesClient struct {
	*resourceClient[csapi.Storage, csapi.StorageCreateRequest, csapi.StorageUpdateRequest]
}

// NewStoragesClient creates a new storages client.
func NewStoragesClient(httpClient *http.Client) *StoragesClient {
	return &StoragesClient{
		resourceClient: newResourceClient[csapi.Storage, csapi.StorageCreateRequest, csapi.StorageUpdateRequest](
			httpClient,
			resourcePaths{
				name:        "storage",
				readPath:    "/storages",
				writePath:   "/admin/storages",
				singularKey: "storage",
			},
		),
	}
}

// ListSections implements csapi.StoragesClient.ListSections.
func (c *StoragesClient) ListSections(ctx context.Context, storageID int) ([]csapi.Section, error) {
	if storageID <= 0 {
		return nil, fmt.Errorf("listing storage sections: %w", csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Get(ctx, "/stores/"+strconv.Itoa(storageID)+"/sections", nil)
	if err != nil {
		return nil, fmt.Errorf("listing sections of storage %d: %w", storageID, err)
	}

	return decodeKeyedList[csapi.Section](resp, "sections")
}
