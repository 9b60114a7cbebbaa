package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/utafrali/DeliveryConsole/internal/domain"
)

// GetAllUsers lists accounts.
func (c *Client) GetAllUsers(ctx context.Context, f UserFilter) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/users", f.params())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return res, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id string) (domain.Record, error) {
	path, err := resourcePath("/admin/users", id)
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodDelete, path, nil)
	if err != nil {
		return nil, fmt.Errorf("delete user %s: %w", id, err)
	}
	return res, nil
}
