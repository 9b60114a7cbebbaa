package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/utafrali/DeliveryConsole/internal/dispatch"
	"github.com/utafrali/DeliveryConsole/internal/domain"
)

// Register creates an account. It does not log the new account in.
func (c *Client) Register(ctx context.Context, in domain.RegisterRequest) (domain.Record, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	req, err := dispatch.NewJSONRequest(http.MethodPost, "/auth/register", in)
	if err != nil {
		return nil, err
	}
	req.Public = true
	res, err := c.dispatcher.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return res, nil
}

// Login exchanges credentials for a token and stores the session.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	in := domain.LoginRequest{Email: email, Password: password}
	if err := validate(in); err != nil {
		return nil, err
	}
	req, err := dispatch.NewJSONRequest(http.MethodPost, "/auth/login", in)
	if err != nil {
		return nil, err
	}
	req.Public = true

	res, err := dispatch.DoJSON[domain.LoginResult](ctx, c.dispatcher, req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := c.sessions.Login(ctx, res.User, res.Token); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	c.logger.InfoContext(ctx, "login succeeded", slog.String("user_id", res.User.ID))
	return res, nil
}

// Logout clears the local session. Nothing is sent to the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.sessions.Logout(ctx)
}
