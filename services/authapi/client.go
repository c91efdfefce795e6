// Package authapi is the REST client of the authentication endpoints.
package authapi

import (
	"context"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/rest"
)

var (
	loginFailedText    = "login failed"
	registerFailedText = "registration failed"
	profileFailedText  = "failed to fetch user profile"
)

type Client struct {
	rest.Client
}

var _ session.AuthAPI = (*Client)(nil)

func NewClient(baseURL string, log core.Logger) *Client {
	return &Client{Client: rest.NewClient(baseURL, log)}
}

type loginRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
}

type loginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *session.User `json:"user"`
	Message string        `json:"message"`
}

// Login exchanges credentials for tokens. The identifier may be a full email
// or a bare username; the backend resolves either.
func (c *Client) Login(ctx context.Context, identifier, password string) (session.LoginData, error) {
	var resp loginResponse
	err := c.Post(ctx, "/auth/login/", "", loginRequest{
		Username: identifier,
		Password: password,
	}, &resp, rest.DetailOrError(loginFailedText))
	if err != nil {
		return session.LoginData{}, err
	}
	return session.LoginData{
		Access:  resp.Access,
		Refresh: resp.Refresh,
		User:    resp.User,
		Message: resp.Message,
	}, nil
}

type registerRequest struct {
	Username string `json:"Username"`
	Password string `json:"Password"`
	Email    string `json:"Email"`
	Name     string `json:"Name"`
}

// Register creates the account. The username is derived from the email's
// local part; registration failures come back field-keyed.
func (c *Client) Register(ctx context.Context, acct session.NewAccount) error {
	payload := registerRequest{
		Username: session.LocalPart(core.CleanString(acct.Email, true /* lower */)),
		Password: acct.Password,
		Email:    core.CleanString(acct.Email, true /* lower */),
		Name:     core.CleanString(acct.Name),
	}
	return c.Post(ctx, "/auth/register/", "", payload, nil,
		rest.FieldKeyed(registerFailedText, "Username", "Email", "Name", "Password"))
}

// Profile fetches the authenticated user's profile. A 401 surfaces as an
// *rest.APIError with that status; the session manager treats it as fatal to
// the current session.
func (c *Client) Profile(ctx context.Context, token string) (session.User, error) {
	var usr session.User
	if err := c.Get(ctx, "/auth/profile/", token, &usr, rest.DetailOrError(profileFailedText)); err != nil {
		return session.User{}, err
	}
	return usr, nil
}
