package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// LaboratoriesClient implements csapi.LaboratoriesClient.
type LaboratoriesClient struct {
	*resourceClient[csapi.Laboratory, csapi.LaboratoryCreateRequest, csapi.LaboratoryUpdateRequest]
}

// NewLaboratoriesClient creates a new laboratories client.
func NewLaboratoriesClient(httpClient *http.Client) *LaboratoriesClient {
	return &LaboratoriesClient{
		resourceClient: newResourceClient[csapi.Laboratory, csapi.LaboratoryCreateRequest, csapi.LaboratoryUpdateRequest](
			httpClient,
			resourcePaths{
				name:        "laboratory",
				readPath:    "/laboratories",
				writePath:   "/admin/laboratories",
				singularKey: "laboratory",
			},
		),
	}
}

// ListStorages implements csapi.LaboratoriesClient.ListStorages.
func (c *LaboratoriesClient) ListStorages(ctx context.Context, labID int) ([]csapi.Storage, error) {
	if labID <= 0 {
		return nil, fmt.Errorf("listing laboratory storages: %w", csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Get(ctx, "/labs/"+strconv.Itoa(labID)+"/storages", nil)
	if err != nil {
		return nil, fmt.Errorf("listing storages of laboratory %d: %w", labID, err)
	}

	return decodeKeyedList[csapi.Storage](resp, "storages")
}
