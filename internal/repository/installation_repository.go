package repository

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// InstallationRepository defines the interface for installation data access
type InstallationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Installation, error)
	List(ctx context.Context, query *InstallationQuery) ([]models.Installation, int64, error)
	Record(ctx context.Context, installation *models.Installation, user string) error
	Delete(ctx context.Context, id uint) error
}

// InstallationQuery extends ListQuery with installation-specific filters
type InstallationQuery struct {
	*ListQuery
	CustomerID *uint
	Period     models.DateRange
}

type installationRepository struct {
	db *gorm.DB
}

// NewInstallationRepository creates a new installation repository
func NewInstallationRepository(db *gorm.DB) InstallationRepository {
	return &installationRepository{db: db}
}

var installationSortColumns = map[string]string{
	"date":     "date",
	"quantity": "quantity",
}

func (r *installationRepository) FindByID(ctx context.Context, id uint) (*models.Installation, error) {
	var installation models.Installation
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Item").
		First(&installation, id).Error
	if err != nil {
		return nil, err
	}
	return &installation, nil
}

func (r *installationRepository) List(ctx context.Context, query *InstallationQuery) ([]models.Installation, int64, error) {
	var installations []models.Installation
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Installation{})

	if query.CustomerID != nil {
		db = db.Where("customer_id = ?", *query.CustomerID)
	}
	db = withPeriod(db, "date", query.Period)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db.Preload("Customer").Preload("Item"), query.ListQuery, installationSortColumns, "date DESC, id DESC").
		Find(&installations).Error
	return installations, total, err
}

// Record takes the installed units from stock, inserts the installation and logs it
func (r *installationRepository) Record(ctx context.Context, installation *models.Installation, user string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if installation.ItemID == nil {
			return gorm.ErrRecordNotFound
		}

		var count int64
		if err := tx.Model(&models.Customer{}).Where("id = ?", installation.CustomerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return &MissingReferenceError{Entity: "Customer", ID: installation.CustomerID}
		}

		item, err := takeStock(tx, *installation.ItemID, installation.Quantity)
		if err != nil {
			return err
		}

		installation.ItemName = item.Name
		if err := tx.Omit("Customer", "Item").Create(installation).Error; err != nil {
			return err
		}

		return tx.Create(models.NewAuditLog(item, models.AuditActionInstallation, installation.Quantity, user)).Error
	})
}

func (r *installationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Installation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
