package media

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
)

// Repository defines persistence operations for media uploads.
type Repository interface {
	Create(ctx context.Context, upload *models.MediaUpload) error
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a media repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Create(ctx context.Context, upload *models.MediaUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *repositoryImpl) FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error) {
	var upload models.MediaUpload
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&upload).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.MediaUpload{}, "id = ?", id).Error
}
