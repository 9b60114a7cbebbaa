package domain

// SurpriseBagInput is the create payload.
type SurpriseBagInput struct {
	RestaurantID      string  `json:"restaurant_id" validate:"required"`
	Title             string  `json:"title" validate:"required"`
	Description       string  `json:"description,omitempty"`
	Category          string  `json:"category,omitempty"`
	OriginalPrice     float64 `json:"original_price" validate:"gt=0"`
	DiscountedPrice   float64 `json:"discounted_price" validate:"gte=0,ltefield=OriginalPrice"`
	QuantityAvailable int     `json:"quantity_available" validate:"gte=0"`
	PickupStart       string  `json:"pickup_start,omitempty"`
	PickupEnd         string  `json:"pickup_end,omitempty"`
	ImageURL          string  `json:"image_url,omitempty" validate:"omitempty,url"`
}
