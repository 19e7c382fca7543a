package auth

import (
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// RegisterRequest captures the signup payload for donors and NGOs.
type RegisterRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	Name        string         `json:"name" validate:"required"`
	Role        enums.UserRole `json:"role" validate:"required"`
	IsAnonymous bool           `json:"is_anonymous"`
	Latitude    *float64       `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude   *float64       `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Address     *string        `json:"address,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the token and user produced by a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        *users.UserDTO `json:"user"`
}
