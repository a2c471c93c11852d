package apimodel

// RestaurantStatus is the publication state of a restaurant
type RestaurantStatus string

const (
	RestaurantActive   RestaurantStatus = "active"
	RestaurantInactive RestaurantStatus = "inactive"
)

// Restaurant is the summary row listed on the console dashboard
type Restaurant struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status RestaurantStatus `json:"status"`
}

// CreateRestaurantRequest is the body of POST /admin/restaurants
type CreateRestaurantRequest struct {
	Name string `json:"name" validate:"required"`
}
