package api

import (
	"context"
	"fmt"

	"github.com/utafrali/DeliveryConsole/internal/domain"
)

// GetRestaurantFinancials summarizes restaurant revenue over r.
func (c *Client) GetRestaurantFinancials(ctx context.Context, r DateRange) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/finance/restaurants", r.params())
	if err != nil {
		return nil, fmt.Errorf("restaurant financials: %w", err)
	}
	return res, nil
}

// GetDeliveryPartnerFinancials summarizes partner earnings over r.
func (c *Client) GetDeliveryPartnerFinancials(ctx context.Context, r DateRange) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/finance/delivery-partners", r.params())
	if err != nil {
		return nil, fmt.Errorf("delivery partner financials: %w", err)
	}
	return res, nil
}

// GetDashboardStats returns platform-wide counters.
func (c *Client) GetDashboardStats(ctx context.Context) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/dashboard/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return res, nil
}
