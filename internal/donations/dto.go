package donations

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// CreateInput carries the donor-supplied fields for a new donation.
type CreateInput struct {
	FoodName         string    `json:"food_name" validate:"required,max=200"`
	Quantity         string    `json:"quantity" validate:"required,max=100"`
	Description      string    `json:"description" validate:"max=2000"`
	PickupGuidelines string    `json:"pickup_guidelines" validate:"max=2000"`
	ImageUploadID    uuid.UUID  `json:"image_upload_id" validate:"required"`
	UseTime          *time.Time `json:"use_time"`
	Latitude         float64    `json:"latitude" validate:"min=-90,max=90"`
	Longitude        float64    `json:"longitude" validate:"min=-180,max=180"`
	Address          string     `json:"address" validate:"max=500"`
}

// TransitionInput asks the engine to move a donation to a target status.
type TransitionInput struct {
	DonationID uuid.UUID
	Target     enums.FoodStatus
	Actor      Actor
}

// ListFilters narrow the donation listing.
type ListFilters struct {
	Status     *enums.FoodStatus
	Search     string
	CreatorUID *uuid.UUID
	NGOUID     *uuid.UUID
}

// DonationView is the wire shape of a donation. Creator identity is masked
// when the donor opted into anonymity.
type DonationView struct {
	ID               uuid.UUID        `json:"id"`
	FoodName         string           `json:"food_name"`
	Quantity         string           `json:"quantity"`
	Description      string           `json:"description,omitempty"`
	PickupGuidelines string           `json:"pickup_guidelines,omitempty"`
	ImageURL         string           `json:"image_url,omitempty"`
	UseTime          *time.Time       `json:"use_time,omitempty"`
	Latitude         float64          `json:"latitude"`
	Longitude        float64          `json:"longitude"`
	Address          string           `json:"address,omitempty"`
	Status           enums.FoodStatus `json:"status"`
	CreatorName      string           `json:"creator_name"`
	CreatorUID       uuid.UUID        `json:"creator_uid"`
	NGOName          string           `json:"ngo_name,omitempty"`
	NGOUID           *uuid.UUID       `json:"ngo_uid,omitempty"`
	AcceptedAt       *time.Time       `json:"accepted_at,omitempty"`
	PickedUpAt       *time.Time       `json:"picked_up_at,omitempty"`
	InTransitAt      *time.Time       `json:"in_transit_at,omitempty"`
	DonatedAt        *time.Time       `json:"donated_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// DonationList wraps paginated donations plus the next page cursor.
type DonationList struct {
	Donations  []DonationView `json:"donations"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
