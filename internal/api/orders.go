package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
)

// GetAllOrders lists orders.
func (c *Client) GetAllOrders(ctx context.Context, f OrderFilter) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/orders", f.params())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return res, nil
}

// UpdateOrderStatus moves an order to status. Unknown statuses are rejected
// locally.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (domain.Record, error) {
	if !slices.Contains(domain.ValidOrderStatuses(), status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	path, err := resourcePath("/admin/orders", id, "status")
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPatch, path, map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("update order %s status: %w", id, err)
	}
	return res, nil
}
