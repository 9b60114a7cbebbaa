package domain

// Delivery partner status constants.
const (
	PartnerStatusPending   = "pending"
	PartnerStatusApproved  = "approved"
	PartnerStatusSuspended = "suspended"
	PartnerStatusRejected  = "rejected"
)

// ValidPartnerStatuses lists the statuses a partner can be moved to.
func ValidPartnerStatuses() []string {
	return []string{
		PartnerStatusPending,
		PartnerStatusApproved,
		PartnerStatusSuspended,
		PartnerStatusRejected,
	}
}

// DeliveryPartnerInput is the onboard/update payload.
type DeliveryPartnerInput struct {
	FullName      string `json:"full_name" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Password      string `json:"password,omitempty" validate:"omitempty,min=6"`
	VehicleType   string `json:"vehicle_type,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
	LicenseNumber string `json:"license_number,omitempty"`
}
