package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/safarline/busadmin/internal/domain"
)

// LoginResult is the credential issued by the login endpoint.
type LoginResult struct {
	Token string
	User  domain.Profile
}

// Login exchanges credentials for a token. The response is
// {"data": {"token": "...", "user": {...}}}.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	p := NewPayload(map[string]any{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
	body, err := c.Do(ctx, Call{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Payload:   &p,
		Group:     GroupAuth,
		Anonymous: true,
	})
	if err != nil {
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}
	token := gjson.GetBytes(body, "data.token").String()
	if token == "" {
		return LoginResult{}, fmt.Errorf("login: decode response: missing data.token")
	}
	var user domain.Profile
	if raw := gjson.GetBytes(body, "data.user"); raw.IsObject() {
		if err := json.Unmarshal([]byte(raw.Raw), &user); err != nil {
			return LoginResult{}, fmt.Errorf("login: decode user: %w", err)
		}
	}
	return LoginResult{Token: token, User: user}, nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.Do(ctx, Call{Method: http.MethodPost, Path: "/auth/logout", Group: GroupAuth}); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Ping checks that the backend answers at all. Any HTTP response counts,
// including 401; only a network failure is reported.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Call{Method: http.MethodGet, Path: "/ping", Anonymous: true})
	if err == nil {
		return nil
	}
	var nerr *NetworkError
	if errors.As(err, &nerr) {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
