package domain

// Restaurant status constants.
const (
	RestaurantStatusPending   = "pending"
	RestaurantStatusApproved  = "approved"
	RestaurantStatusSuspended = "suspended"
	RestaurantStatusRejected  = "rejected"
)

// ValidRestaurantStatuses lists the statuses a restaurant can be moved to.
func ValidRestaurantStatuses() []string {
	return []string{
		RestaurantStatusPending,
		RestaurantStatusApproved,
		RestaurantStatusSuspended,
		RestaurantStatusRejected,
	}
}

// RestaurantInput is the create/update payload.
type RestaurantInput struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Email        string   `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber  string   `json:"phone_number,omitempty"`
	Address      string   `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	CuisineType  string   `json:"cuisine_type,omitempty"`
	ImageURL     string   `json:"image_url,omitempty" validate:"omitempty,url"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	OwnerEmail   string   `json:"owner_email,omitempty" validate:"omitempty,email"`
	Password     string   `json:"password,omitempty" validate:"omitempty,min=6"`
}
