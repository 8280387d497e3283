package plandy

import (
	"context"
	"fmt"
	"net/http"
)

// Login authenticates with email and password. On success the returned
// token is stored on the client and also returned so the caller can persist
// it in its own session.
func (c *Client) Login(ctx context.Context, email, password string) (string, *User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}
	var data authData
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &data); err != nil {
		return "", nil, err
	}
	if data.Token == "" {
		return "", nil, fmt.Errorf("%w: login response carried no token", ErrRequestFailed)
	}
	c.SetToken(data.Token)
	return data.Token, data.User, nil
}

// Register creates an account and logs it in. An empty confirmation
// defaults to the password itself, matching the backend's expectation.
func (c *Client) Register(ctx context.Context, email, password, confirmation, name string) (string, *User, error) {
	if confirmation == "" {
		confirmation = password
	}
	body := map[string]string{
		"email":                 email,
		"password":              password,
		"password_confirmation": confirmation,
		"name":                  name,
	}
	var data authData
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &data); err != nil {
		return "", nil, err
	}
	if data.Token == "" {
		return "", nil, fmt.Errorf("%w: register response carried no token", ErrRequestFailed)
	}
	c.SetToken(data.Token)
	return data.Token, data.User, nil
}

// CurrentUser fetches the account behind the stored token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout invalidates the session server-side and clears the stored token.
// The token is cleared even when the backend call fails: a half-dead
// session is worse than an extra login prompt.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.clearToken()
	return err
}
