package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	IsAnonymous bool           `json:"is_anonymous"`
	IsActive    bool           `json:"is_active"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Address     *string        `json:"address,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Role         enums.UserRole
	IsAnonymous  bool
	Latitude     *float64
	Longitude    *float64
	Address      *string
}

// UpdateProfileInput carries the self-service profile updates.
type UpdateProfileInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=200"`
	IsAnonymous *bool    `json:"is_anonymous"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Address     *string  `json:"address" validate:"omitempty,max=500"`
}

// ToModel materializes the create DTO into a persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Role:         d.Role,
		IsAnonymous:  d.IsAnonymous,
		IsActive:     true,
		Latitude:     d.Latitude,
		Longitude:    d.Longitude,
		Address:      d.Address,
	}
}

// FromModel maps a stored user into its transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		IsAnonymous: u.IsAnonymous,
		IsActive:    u.IsActive,
		Latitude:    u.Latitude,
		Longitude:   u.Longitude,
		Address:     u.Address,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
