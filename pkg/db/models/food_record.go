package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// IdentitySnapshot freezes the acting user's identity on the record at the
// moment of the action. Snapshots never change afterwards, even if the user
// profile does.
type IdentitySnapshot struct {
	UID         uuid.UUID `json:"uid"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsAnonymous bool      `json:"is_anonymous"`
}

// FoodRecord represents one posted food item and its donation lifecycle.
// Descriptive fields and the creator snapshot are immutable after creation;
// transitions only touch status, the stage timestamps and the NGO snapshot.
type FoodRecord struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FoodName         string            `gorm:"column:food_name;type:text;not null"`
	Quantity         string            `gorm:"column:quantity;type:text;not null"`
	Description      string            `gorm:"column:description;type:text"`
	PickupGuidelines string            `gorm:"column:pickup_guidelines;type:text"`
	ImageURL         string            `gorm:"column:image_url;type:text;not null"`
	UseTime          *time.Time        `gorm:"column:use_time"`
	Latitude         float64           `gorm:"column:latitude;not null"`
	Longitude        float64           `gorm:"column:longitude;not null"`
	Address          string            `gorm:"column:address;type:text"`
	CreatedBy        IdentitySnapshot  `gorm:"column:created_by;type:jsonb;serializer:json;not null"`
	Status           enums.FoodStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	NGODetails       *IdentitySnapshot `gorm:"column:ngo_details;type:jsonb;serializer:json"`
	AcceptedAt       *time.Time        `gorm:"column:accepted_at"`
	PickedUpAt       *time.Time        `gorm:"column:picked_up_at"`
	InTransitAt      *time.Time        `gorm:"column:in_transit_at"`
	DonatedAt        *time.Time        `gorm:"column:donated_at"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// StageTimestamp returns the pointer stamped when the record reached status.
func (f *FoodRecord) StageTimestamp(status enums.FoodStatus) *time.Time {
	switch status {
	case enums.FoodStatusAccepted:
		return f.AcceptedAt
	case enums.FoodStatusPickup:
		return f.PickedUpAt
	case enums.FoodStatusInTransit:
		return f.InTransitAt
	case enums.FoodStatusDonated:
		return f.DonatedAt
	default:
		return nil
	}
}
