package donations

import (
	"time"

	"github.com/google/uuid"
)

// CreatedEvent is published after a donation row is committed. The worker
// consumes it to run the nearby-NGO notification fan-out.
type CreatedEvent struct {
	DonationID uuid.UUID `json:"donation_id"`
	FoodName   string    `json:"food_name"`
	Quantity   string    `json:"quantity"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	DonorName  string    `json:"donor_name"`
	CreatedAt  time.Time `json:"created_at"`
}
