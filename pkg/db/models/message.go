package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two users. ConversationKey is the
// sorted "uidA:uidB" pair, so one equality filter fetches a whole thread
// regardless of direction.
type Message struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ConversationKey string    `gorm:"column:conversation_key;type:text;not null;index"`
	SenderID        uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	ReceiverID      uuid.UUID `gorm:"column:receiver_id;type:uuid;not null"`
	Text            string    `gorm:"column:text;type:text"`
	ImageURL        *string   `gorm:"column:image_url;type:text"`
	FileName        *string   `gorm:"column:file_name;type:text"`
	FileType        *string   `gorm:"column:file_type;type:text"`
	Read            bool      `gorm:"column:read;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ConversationKeyFor returns the canonical participants key for two users.
func ConversationKeyFor(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return first + ":" + second
}
