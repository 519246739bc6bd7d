package repository

import (
	"context"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// CustomerRepository defines the interface for customer directory access
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Customer, error)
	FindByName(ctx context.Context, name string) (*models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) error
	List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error)
	Delete(ctx context.Context, id uint) error
	DeleteAll(ctx context.Context) (int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

var customerSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

func (r *customerRepository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).First(&customer, id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) FindByName(ctx context.Context, name string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) List(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Customer{})

	if query.Search != "" {
		search := likePattern(query.Search)
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db, query, customerSortColumns, "name ASC").Find(&customers).Error
	return customers, total, err
}

// Delete removes the customer with its installations; its sales stay on record without the link
func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, id).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.Installation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
}

// DeleteAll clears installations first, then every customer
func (r *customerRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Installation{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Sale{}).Where("customer_id IS NOT NULL").Update("customer_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("1 = 1").Delete(&models.Customer{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
