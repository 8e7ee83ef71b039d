package client

import (
	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// SectionsClient implements csapi.SectionsClient.
type SectionsClient struct {
	*resourceClient[csapi.Section, csapi.SectionCreateRequest, csapi.SectionUpdateRequest]
}

// NewSectionsClient creates a new sections client.
func NewSectionsClient(httpClient *http.Client) *SectionsClient {
	return &SectionsClient{
		resourceClient: newResourceClient[csapi.Section, csapi.SectionCreateRequest, csapi.SectionUpdateRequest](
			httpClient,
			resourcePaths{
				name:        "section",
				readPath:    "/sections",
				writePath:   "/admin/sections",
				singularKey: "section",
			},
		),
	}
}
