package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/central-storage/csclient/internal/auth"
	"github.com/central-storage/csclient/internal/http"
	"github.com/central-storage/csclient/pkg/csapi"
)

// AuthClient implements csapi.AuthClient on top of the client's session.
type AuthClient struct {
	httpClient *http.Client
	session    *auth.Session
}

// NewAuthClient creates a new auth client.
func NewAuthClient(httpClient *http.Client, session *auth.Session) *AuthClient {
	return &AuthClient{
		httpClient: httpClient,
		session:    session,
	}
}

// Login implements csapi.AuthClient.Login. The returned token becomes the session token.
func (c *AuthClient) Login(ctx context.Context, username, password string) (*csapi.LoginResponse, error) {
	resp, err := c.httpClient.Post(ctx, "/login", &csapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("logging in as %q: %w", username, err)
	}

	var login csapi.LoginResponse

	err = json.Unmarshal(resp.Body, &login)
	if err != nil {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("decoding login response: %w", err))
	}

	if login.Token == "" {
		return nil, csapi.NewDecodeError(resp.StatusCode, resp.Body, fmt.Errorf("%w: token", csapi.ErrMissingEnvelopeField))
	}

	err = c.session.Login(login.Token)
	if err != nil {
		return nil, fmt.Errorf("logging in as %q: %w", username, err)
	}

	return &login, nil
}

// Logout implements csapi.AuthClient.Logout. The server keeps no session state.
func (c *AuthClient) Logout() {
	c.session.Clear()
}

// Token implements csapi.AuthClient.Token.
func (c *AuthClient) Token() string {
	token := c.session.Token()
	if token == nil {
		return ""
	}

	return token.AccessToken
}

// SetToken implements csapi.AuthClient.SetToken.
func (c *AuthClient) SetToken(token string) {
	if token == "" {
		c.session.Clear()

		return
	}

	c.session.SetToken(token, time.Time{})
}

// Authenticated implements csapi.AuthClient.Authenticated. It reports whether a
// non-expired token is held; it does not contact the server.
func (c *AuthClient) Authenticated() bool {
	return c.session.Check() == nil
}

// Profile implements csapi.AuthClient.Profile.
func (c *AuthClient) Profile(ctx context.Context) (*csapi.User, error) {
	err := c.requireToken()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	return decodeEntity[csapi.User](resp, "user")
}

// UpdateProfile implements csapi.AuthClient.UpdateProfile.
func (c *AuthClient) UpdateProfile(ctx context.Context, request *csapi.ProfileUpdateRequest) (*csapi.User, error) {
	err := c.requireToken()
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Put(ctx, "/profile", request)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	return decodeEntity[csapi.User](resp, "user")
}

// ChangePassword implements csapi.AuthClient.ChangePassword.
func (c *AuthClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	err := c.requireToken()
	if err != nil {
		return err
	}

	_, err = c.httpClient.Post(ctx, "/change-password", &csapi.PasswordChangeRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return fmt.Errorf("changing password: %w", err)
	}

	return nil
}

func (c *AuthClient) requireToken() error {
	if errors.Is(c.session.Check(), auth.ErrNoToken) {
		return csapi.ErrNotAuthenticated
	}

	return nil
}
