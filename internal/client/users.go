package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// UsersClient implements csapi.UsersClient.
type UsersClient struct {
	httpClient *http.Client
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *http.Client) *UsersClient {
	return &UsersClient{
		httpClient: httpClient,
	}
}

func userPath(id int) string {
	return "/admin/users/" + strconv.Itoa(id)
}

// Register implements csapi.UsersClient.Register.
func (c *UsersClient) Register(ctx context.Context, request *csapi.UserCreateRequest) (*csapi.User, error) {
	resp, err := c.httpClient.Post(ctx, "/admin/register", request)
	if err != nil {
		return nil, fmt.Errorf("registering user %q: %w", request.Username, err)
	}

	return decodeEntity[csapi.User](resp, "user")
}

// Get implements csapi.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, id int) (*csapi.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("getting user: %w", csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Get(ctx, userPath(id), nil)
	if err != nil {
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}

	return decodeEntity[csapi.User](resp, "user")
}

// List implements csapi.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, params *csapi.QueryParams) (*csapi.ListResponse[csapi.User], error) {
	err := params.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	resp, err := c.httpClient.Get(ctx, "/admin/users", params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	return decodePage(resp, decodeJSON[csapi.User])
}

// Update implements csapi.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, id int, request *csapi.UserUpdateRequest) (*csapi.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("updating user: %w", csapi.ErrInvalidID)
	}

	resp, err := c.httpClient.Put(ctx, userPath(id), request)
	if err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}

	return decodeEntity[csapi.User](resp, "user")
}

// Delete implements csapi.UsersClient.Delete.
func (c *UsersClient) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("deleting user: %w", csapi.ErrInvalidID)
	}

	_, err := c.httpClient.Delete(ctx, userPath(id))
	if err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}

	return nil
}
