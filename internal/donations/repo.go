package donations

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a donations repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.FoodRecord) (*models.FoodRecord, error) {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodRecord, error) {
	var record models.FoodRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// snapshotUID builds the JSON-path expression for a snapshot column's uid,
// per dialect.
func (r *repository) snapshotUID(column string) string {
	if r.db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("json_extract(%s, '$.uid')", column)
	}
	return fmt.Sprintf("%s->>'uid'", column)
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.FoodRecord, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.FoodRecord{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("LOWER(food_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filters.CreatorUID != nil {
		query = query.Where(r.snapshotUID("created_by")+" = ?", filters.CreatorUID.String())
	}
	if filters.NGOUID != nil {
		query = query.Where(r.snapshotUID("ngo_details")+" = ?", filters.NGOUID.String())
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var records []models.FoodRecord
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&records).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, next, nil
}

func (r *repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.FoodStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.FoodRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[enums.FoodStatus]int64, error) {
	type row struct {
		Status enums.FoodStatus
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.FoodRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.FoodStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
