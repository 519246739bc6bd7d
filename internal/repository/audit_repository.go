package repository

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// AuditRepository defines the interface for audit log access. Entries are append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, query *AuditQuery) ([]models.AuditLog, int64, error)
}

// AuditQuery extends ListQuery with audit-specific filters
type AuditQuery struct {
	*ListQuery
	Action string
	Period models.DateRange
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, query *AuditQuery) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if query.Action != "" {
		db = db.Where("action = ?", query.Action)
	}
	if query.Search != "" {
		search := likePattern(query.Search)
		db = db.Where("LOWER(item) LIKE ? OR LOWER(category) LIKE ?", search, search)
	}
	db = withPeriod(db, "timestamp", query.Period)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db, query.ListQuery, nil, "timestamp DESC, id DESC").Find(&logs).Error
	return logs, total, err
}
