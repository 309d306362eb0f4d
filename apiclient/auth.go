package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/instantlly/ads-admin/apierrors"
	"github.com/instantlly/ads-admin/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Token string                `json:"token"`
		Admin *session.AdminProfile `json:"admin,omitempty"`
	} `json:"data"`
}

// Login exchanges admin credentials for a bearer token and installs it in
// the session. A fresh login opens a new invalidation episode.
func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return &apierrors.ValidationError{Field: "credentials", Message: "username and password are required"}
	}

	var resp loginResponse
	err := c.Do(ctx, http.MethodPost, "/admin-auth/login", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	if !resp.Success || resp.Data.Token == "" {
		return &apierrors.AuthError{Message: "invalid credentials"}
	}

	if err := c.session.SetToken(resp.Data.Token, resp.Data.Admin); err != nil {
		return fmt.Errorf("login succeeded but token could not be persisted: %w", err)
	}

	c.log.Info("admin logged in", zap.String("username", username))
	return nil
}

// Logout destroys the session locally. The bearer token is stateless on
// the backend side; there is nothing to revoke remotely.
func (c *Client) Logout() error {
	c.log.Info("admin logged out")
	return c.session.Clear()
}
