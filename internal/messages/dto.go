package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
)

// SendInput is the payload for posting a direct message.
type SendInput struct {
	ReceiverID uuid.UUID  `json:"receiver_id" validate:"required"`
	Text       string     `json:"text" validate:"required_without=UploadID,max=2000"`
	UploadID   *uuid.UUID `json:"upload_id,omitempty"`
}

// MessageView is the API projection of a stored message.
type MessageView struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Text       string    `json:"text,omitempty"`
	ImageURL   *string   `json:"image_url,omitempty"`
	FileName   *string   `json:"file_name,omitempty"`
	FileType   *string   `json:"file_type,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationPage is one page of a thread, newest first.
type ConversationPage struct {
	Messages   []MessageView `json:"messages"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// NewView maps a stored message into its API shape.
func NewView(m *models.Message) MessageView {
	return MessageView{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		ImageURL:   m.ImageURL,
		FileName:   m.FileName,
		FileType:   m.FileType,
		Read:       m.Read,
		CreatedAt:  m.CreatedAt,
	}
}
