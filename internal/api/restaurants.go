package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/utafrali/DeliveryConsole/internal/domain"
	apperrors "github.com/utafrali/DeliveryConsole/pkg/errors"
)

const restaurantsPath = "/admin/restaurants"

// GetAllRestaurants lists restaurants.
func (c *Client) GetAllRestaurants(ctx context.Context, f RestaurantFilter) (domain.Record, error) {
	res, err := get(ctx, c, restaurantsPath, f.params())
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return res, nil
}

// CreateRestaurant registers a restaurant and its owner account.
func (c *Client) CreateRestaurant(ctx context.Context, in domain.RestaurantInput) (domain.Record, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPost, restaurantsPath, in)
	if err != nil {
		return nil, fmt.Errorf("create restaurant: %w", err)
	}
	return res, nil
}

// UpdateRestaurant replaces a restaurant's profile.
func (c *Client) UpdateRestaurant(ctx context.Context, id string, in domain.RestaurantInput) (domain.Record, error) {
	path, err := resourcePath(restaurantsPath, id)
	if err != nil {
		return nil, err
	}
	if err := validate(in); err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPut, path, in)
	if err != nil {
		return nil, fmt.Errorf("update restaurant %s: %w", id, err)
	}
	return res, nil
}

// UpdateRestaurantStatus approves, suspends or rejects a restaurant. Unknown
// statuses are rejected locally.
func (c *Client) UpdateRestaurantStatus(ctx context.Context, id, status string) (domain.Record, error) {
	if !slices.Contains(domain.ValidRestaurantStatuses(), status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown restaurant status %q", status))
	}
	path, err := resourcePath(restaurantsPath, id, "status")
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodPatch, path, map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("update restaurant %s status: %w", id, err)
	}
	return res, nil
}

// GetCuisines lists the cuisine types known to the platform.
func (c *Client) GetCuisines(ctx context.Context) (domain.Record, error) {
	res, err := get(ctx, c, restaurantsPath+"/cuisines", nil)
	if err != nil {
		return nil, fmt.Errorf("list cuisines: %w", err)
	}
	return res, nil
}

// DeleteRestaurant removes a restaurant.
func (c *Client) DeleteRestaurant(ctx context.Context, id string) (domain.Record, error) {
	path, err := resourcePath(restaurantsPath, id)
	if err != nil {
		return nil, err
	}
	res, err := send(ctx, c, http.MethodDelete, path, nil)
	if err != nil {
		return nil, fmt.Errorf("delete restaurant %s: %w", id, err)
	}
	return res, nil
}

// UploadRestaurantImage uploads an image; the response carries its hosted URL.
func (c *Client) UploadRestaurantImage(ctx context.Context, filename string, r io.Reader) (domain.Record, error) {
	res, err := upload(ctx, c, "/upload/restaurant-image", filename, r)
	if err != nil {
		return nil, fmt.Errorf("upload restaurant image: %w", err)
	}
	return res, nil
}
