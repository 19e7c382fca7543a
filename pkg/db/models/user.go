package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// User represents the canonical identity entity. NGO accounts carry a
// registered location used by the nearby-donation fan-out.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	IsAnonymous  bool           `gorm:"column:is_anonymous;not null;default:false"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	Latitude     *float64       `gorm:"column:latitude"`
	Longitude    *float64       `gorm:"column:longitude"`
	Address      *string        `gorm:"column:address"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// Snapshot freezes the user identity for embedding in a FoodRecord.
func (u *User) Snapshot() IdentitySnapshot {
	return IdentitySnapshot{
		UID:         u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsAnonymous: u.IsAnonymous,
	}
}

// HasLocation reports whether the account registered coordinates.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
