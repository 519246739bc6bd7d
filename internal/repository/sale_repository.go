package repository

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// SaleRepository defines the interface for sales data access
type SaleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Sale, error)
	List(ctx context.Context, query *SaleQuery) ([]models.Sale, int64, error)
	FindByCustomer(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error)
	Record(ctx context.Context, sale *models.Sale) error
}

// SaleQuery extends ListQuery with sale-specific filters
type SaleQuery struct {
	*ListQuery
	CustomerID *uint
	ItemID     *uint
	Period     models.DateRange
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

var saleSortColumns = map[string]string{
	"date":       "date",
	"item":       "item",
	"quantity":   "quantity",
	"total_sale": "total_sale",
	"profit":     "profit",
}

func (r *saleRepository) FindByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.WithContext(ctx).Preload("Customer").First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, query *SaleQuery) ([]models.Sale, int64, error) {
	var sales []models.Sale
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Sale{})

	if query.CustomerID != nil {
		db = db.Where("customer_id = ?", *query.CustomerID)
	}
	if query.ItemID != nil {
		db = db.Where("item_id = ?", *query.ItemID)
	}
	db = withPeriod(db, "date", query.Period)

	if query.Search != "" {
		db = db.Where("LOWER(item) LIKE ?", likePattern(query.Search))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db.Preload("Customer"), query.ListQuery, saleSortColumns, "date DESC, id DESC").
		Find(&sales).Error
	return sales, total, err
}

// FindByCustomer returns a customer's sales in date order, as printed on statements
func (r *saleRepository) FindByCustomer(ctx context.Context, customerID uint, period models.DateRange) ([]models.Sale, error) {
	var sales []models.Sale
	db := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	err := withPeriod(db, "date", period).
		Order("date ASC, id ASC").
		Find(&sales).Error
	return sales, err
}

// Record takes the sold units from stock, stores the sale with its derived totals
// and logs a Sale entry, all in one transaction.
func (r *saleRepository) Record(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sale.ItemID == nil {
			return gorm.ErrRecordNotFound
		}

		if sale.CustomerID != nil {
			var count int64
			if err := tx.Model(&models.Customer{}).Where("id = ?", *sale.CustomerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return &MissingReferenceError{Entity: "Customer", ID: *sale.CustomerID}
			}
		}

		item, err := takeStock(tx, *sale.ItemID, sale.Quantity)
		if err != nil {
			return err
		}

		sale.ApplyPricing(item)
		if err := tx.Omit("Item", "Customer").Create(sale).Error; err != nil {
			return err
		}

		return tx.Create(models.NewAuditLog(item, models.AuditActionSale, sale.Quantity, sale.User)).Error
	})
}

// withPeriod restricts column to the inclusive whole-day range
func withPeriod(db *gorm.DB, column string, period models.DateRange) *gorm.DB {
	from, to := period.Bounds()
	if from != nil {
		db = db.Where(column+" >= ?", *from)
	}
	if to != nil {
		db = db.Where(column+" < ?", *to)
	}
	return db
}
