package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
)

const partnersPath = "/admin/delivery-partners"

// GetAllDeliveryPartners lists delivery partners.
func (c *Client) GetAllDeliveryPartners(ctx context.Context, f DeliveryPartnerFilter) (domain.Record, error) {
	res, err := get(ctx, c, partnersPath, f.params())
	if err != nil {
		return nil, fmt.Errorf("list delivery partners: %w", err)
	}
	return res, nil
}

// OnboardDeliveryPartner creates a delivery partner and its account.
func (c *Client) OnboardDeliveryPartner(ctx context.Context, in domain.DeliveryPartnerInput) (domain.Record, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPost, partnersPath, in)
	if err != nil {
		return nil, fmt.Errorf("onboard delivery partner: %w", err)
	}
	return res, nil
}

// UpdateDeliveryPartner replaces a delivery partner's profile.
func (c *Client) UpdateDeliveryPartner(ctx context.Context, id string, in domain.DeliveryPartnerInput) (domain.Record, error) {
	path, err := resourcePath(partnersPath, id)
	if err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPut, path, in)
	if err != nil {
		return nil, fmt.Errorf("update delivery partner %s: %w", id, err)
	}
	return res, nil
}

// UpdateDeliveryPartnerStatus approves, suspends or rejects a delivery
// partner. Unknown statuses are rejected locally.
func (c *Client) UpdateDeliveryPartnerStatus(ctx context.Context, id, status string) (domain.Record, error) {
	if !slices.Contains(domain.ValidPartnerStatuses(), status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown delivery partner status %q", status))
	}
	path, err := resourcePath(partnersPath, id, "status")
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPatch, path, map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("update delivery partner %s status: %w", id, err)
	}
	return res, nil
}

// SetDeliveryPartnerOnline toggles whether a partner receives deliveries.
func (c *Client) SetDeliveryPartnerOnline(ctx context.Context, id string, online bool) (domain.Record, error) {
	path, err := resourcePath(partnersPath, id, "online")
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPatch, path, map[string]bool{"is_online": online})
	if err != nil {
		return nil, fmt.Errorf("set delivery partner %s online: %w", id, err)
	}
	return res, nil
}

// DeleteDeliveryPartner removes a delivery partner.
func (c *Client) DeleteDeliveryPartner(ctx context.Context, id string) (domain.Record, error) {
	path, err := resourcePath(partnersPath, id)
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodDelete, path, nil)
	if err != nil {
		return nil, fmt.Errorf("delete delivery partner %s: %w", id, err)
	}
	return res, nil
}
