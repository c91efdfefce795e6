// Package adminapi is the REST client of the admin user-management endpoints.
package adminapi

import (
	"context"
	"fmt"

	"github.com/edupredict/predictcli/core"
	"github.com/edupredict/predictcli/core/session"
	"github.com/edupredict/predictcli/services/rest"
)

var (
	usersFailedText  = "failed to load user list"
	createFailedText = "failed to create user"
	deleteFailedText = "failed to delete user"
)

// NewUser is an admin-created account.
type NewUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ClassName string `json:"class_name,omitempty"`
}

type Client struct {
	rest.Client
}

func NewClient(baseURL string, log core.Logger) *Client {
	return &Client{Client: rest.NewClient(baseURL, log)}
}

// Users lists every account.
func (c *Client) Users(ctx context.Context, token string) ([]session.User, error) {
	var resp struct {
		Users []session.User `json:"users"`
	}
	if err := c.Get(ctx, "/api/admin/users/", token, &resp, rest.DetailOrError(usersFailedText)); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser provisions an account with an explicit role.
func (c *Client) CreateUser(ctx context.Context, token string, nu NewUser) (session.User, error) {
	var usr session.User
	if err := c.Post(ctx, "/api/admin/users/", token, nu, &usr, rest.DetailOrError(createFailedText)); err != nil {
		return session.User{}, err
	}
	return usr, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/api/admin/users/%d/", id)
	return c.Delete(ctx, path, token, rest.DetailOrError(deleteFailedText))
}
