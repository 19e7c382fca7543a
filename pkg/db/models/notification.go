package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type       enums.NotificationType `gorm:"type:text;not null"`
	Title      string                 `gorm:"type:text;not null"`
	Message    string                 `gorm:"type:text;not null"`
	DonationID *uuid.UUID             `gorm:"column:donation_id;type:uuid"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
