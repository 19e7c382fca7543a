package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// UploadReader resolves a completed upload owned by the posting donor.
type UploadReader interface {
	FindOwned(ctx context.Context, id, ownerID uuid.UUID) (*models.MediaUpload, error)
}

// Repository defines persistence operations for food records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.FoodRecord) (*models.FoodRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.FoodRecord, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.FoodRecord, string, error)
	// UpdateStatusFrom applies updates only while the record still holds the
	// expected status, returning the number of rows changed.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.FoodStatus, updates map[string]any) (int64, error)
	CountByStatus(ctx context.Context) (map[enums.FoodStatus]int64, error)
}
