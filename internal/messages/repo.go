package messages

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// Repository defines persistence operations for direct messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) error
	ListConversation(ctx context.Context, params listParams) ([]models.Message, *pagination.Cursor, error)
	MarkConversationRead(ctx context.Context, conversationKey string, receiverID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error)
}

type listParams struct {
	ConversationKey string
	Limit           int
	Cursor          *pagination.Cursor
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a messages repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) ListConversation(ctx context.Context, params listParams) ([]models.Message, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_key = ?", params.ConversationKey)
	if params.Cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			params.Cursor.CreatedAt, params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	if len(messages) > normalized {
		messages = messages[:normalized]
		last := messages[len(messages)-1]
		return messages, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return messages, nil, nil
}

func (r *repositoryImpl) MarkConversationRead(ctx context.Context, conversationKey string, receiverID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_key = ? AND receiver_id = ? AND NOT read", conversationKey, receiverID).
		UpdateColumn("read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, receiverID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND NOT read", receiverID).
		Count(&count).Error
	return count, err
}
