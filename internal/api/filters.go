package api

import (
	"time"

	"github.com/utafrali/DeliveryConsole/pkg/query"
)

// UserFilter narrows the user listing. Zero fields are not sent.
type UserFilter struct {
	Search   string
	UserType string
	IsActive *bool
}

func (f UserFilter) params() *query.Params {
	return query.New().
		Set("search", f.Search).
		Set("user_type", f.UserType).
		SetBool("is_active", f.IsActive)
}

// RestaurantFilter narrows the restaurant listing.
type RestaurantFilter struct {
	Search string
	Status string
}

func (f RestaurantFilter) params() *query.Params {
	return query.New().
		Set("search", f.Search).
		Set("status", f.Status)
}

// DeliveryPartnerFilter narrows the delivery partner listing.
type DeliveryPartnerFilter struct {
	Search   string
	Status   string
	IsOnline *bool
}

func (f DeliveryPartnerFilter) params() *query.Params {
	return query.New().
		Set("search", f.Search).
		Set("status", f.Status).
		SetBool("is_online", f.IsOnline)
}

// OrderFilter narrows the order listing. Dates are sent as YYYY-MM-DD and
// restaurant ids as one comma-joined parameter.
type OrderFilter struct {
	Search        string
	Status        string
	StartDate     time.Time
	EndDate       time.Time
	RestaurantIDs []string
}

func (f OrderFilter) params() *query.Params {
	return query.New().
		Set("search", f.Search).
		Set("status", f.Status).
		SetDate("start_date", f.StartDate).
		SetDate("end_date", f.EndDate).
		SetList("restaurant_ids", f.RestaurantIDs)
}

// SurpriseBagFilter narrows the surprise bag listing.
type SurpriseBagFilter struct {
	Search        string
	Status        string
	RestaurantIDs []string
}

func (f SurpriseBagFilter) params() *query.Params {
	return query.New().
		Set("search", f.Search).
		Set("status", f.Status).
		SetList("restaurant_ids", f.RestaurantIDs)
}

// DateRange bounds the financial summaries.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) params() *query.Params {
	return query.New().
		SetDate("start_date", r.Start).
		SetDate("end_date", r.End)
}
