package repository

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// ImportRepository defines the interface for import batch records
type ImportRepository interface {
	Create(ctx context.Context, batch *models.ImportBatch) error
	Update(ctx context.Context, batch *models.ImportBatch) error
	FindByID(ctx context.Context, id uint) (*models.ImportBatch, error)
	List(ctx context.Context, query *ListQuery) ([]models.ImportBatch, int64, error)
}

type importRepository struct {
	db *gorm.DB
}

// NewImportRepository creates a new import batch repository
func NewImportRepository(db *gorm.DB) ImportRepository {
	return &importRepository{db: db}
}

func (r *importRepository) Create(ctx context.Context, batch *models.ImportBatch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *importRepository) Update(ctx context.Context, batch *models.ImportBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

func (r *importRepository) FindByID(ctx context.Context, id uint) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.WithContext(ctx).First(&batch, id).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *importRepository) List(ctx context.Context, query *ListQuery) ([]models.ImportBatch, int64, error) {
	var batches []models.ImportBatch
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ImportBatch{})

	if query.Filters["kind"] != "" {
		db = db.Where("kind = ?", query.Filters["kind"])
	}
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db, query, nil, "created_at DESC, id DESC").Find(&batches).Error
	return batches, total, err
}
