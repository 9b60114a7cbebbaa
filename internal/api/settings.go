package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/utafrali/DeliveryConsole/internal/domain"
)

// GetSettings returns the settings response as sent, envelope included.
func (c *Client) GetSettings(ctx context.Context) (domain.Record, error) {
	res, err := get(ctx, c, "/admin/settings", nil)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return res, nil
}

// UpdateSettings replaces the platform settings. They are sent inside the
// same {"settings": ...} envelope the read returns.
func (c *Client) UpdateSettings(ctx context.Context, s domain.Settings) (domain.Record, error) {
	res, err := send(ctx, c, http.MethodPut, "/admin/settings", domain.SettingsEnvelope{Settings: s})
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return res, nil
}
