package domain

// User type constants.
const (
	UserTypeCustomer        = "customer"
	UserTypeRestaurant      = "restaurant"
	UserTypeDeliveryPartner = "delivery_partner"
	UserTypeAdmin           = "admin"
)

// UserRecord is the identity snapshot captured at login. It is never
// refreshed automatically.
type UserRecord struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	UserType    string `json:"user_type"`
	IsVerified  bool   `json:"is_verified"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

// LoginResult is returned by the login endpoint.
type LoginResult struct {
	Message string     `json:"message,omitempty"`
	User    UserRecord `json:"user"`
	Token   string     `json:"token"`
}

// RegisterRequest creates an account with a password.
type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password" validate:"required,min=6"`
	UserType    string `json:"user_type,omitempty" validate:"omitempty,oneof=customer restaurant delivery_partner admin"`
}

// LoginRequest is the password login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
