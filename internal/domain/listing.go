package domain

import "time"

type Listing struct {
	ID                  string    `json:"id"`
	OwnerEmail          string    `json:"owner_email"`
	Description         string    `json:"description"`
	Address             string    `json:"address"`
	BedroomNo           string    `json:"bedroom_no"`
	BathroomNo          string    `json:"bathroom_no"`
	Furnished           string    `json:"furnished"`
	AvailableFacilities string    `json:"available_facilities"`
	InteriorFeatures    string    `json:"interior_features"`
	ExteriorFeatures    string    `json:"exterior_features"`
	Purpose             string    `json:"purpose"`
	Price               int       `json:"price"`
	PaymentFrequency    int       `json:"payment_frequency"`
	PropertyType        string    `json:"property_type"`
	PhotoKey            *string   `json:"photo_key,omitempty"`
	CreatedAt           time.Time `json:"created"`
}

type CreateListingRequest struct {
	Description         string `json:"description" validate:"required"`
	Address             string `json:"address" validate:"required"`
	BedroomNo           string `json:"bedroom_no" validate:"required"`
	BathroomNo          string `json:"bathroom_no" validate:"required"`
	Furnished           string `json:"furnished"`
	AvailableFacilities string `json:"available_facilities"`
	InteriorFeatures    string `json:"interior_features"`
	ExteriorFeatures    string `json:"exterior_features"`
	Purpose             string `json:"purpose" validate:"required"`
	Price               int    `json:"price" validate:"required,gt=0"`
	PaymentFrequency    int    `json:"payment_frequency"`
	PropertyType        string `json:"property_type" validate:"required"`
}
