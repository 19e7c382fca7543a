package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaUpload records a blob pushed to object storage. FoodRecord and
// Message image URLs must point at a completed upload.
type MediaUpload struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	ObjectKey   string    `gorm:"column:object_key;type:text;not null;uniqueIndex"`
	ContentType string    `gorm:"column:content_type;type:text;not null"`
	SizeBytes   int64     `gorm:"column:size_bytes;not null"`
	PublicURL   string    `gorm:"column:public_url;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
