package repository

import (
	"context"
	"errors"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
)

// ItemRepository defines the interface for inventory data access
type ItemRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Item, error)
	FindByName(ctx context.Context, name string) ([]models.Item, error)
	FindByNameAndCategory(ctx context.Context, name, category string) (*models.Item, error)
	List(ctx context.Context, query *ListQuery) ([]models.Item, int64, error)
	LowStock(ctx context.Context, threshold int) ([]models.Item, error)
	Categories(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, item *models.Item, user string) (string, error)
	Delete(ctx context.Context, id uint, user string) (*models.Item, error)
	DeleteAll(ctx context.Context, user string) (int64, error)
	ReplaceStock(ctx context.Context, items []models.Item, user string) (added, updated int, err error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

var itemSortColumns = map[string]string{
	"item":          "item",
	"category":      "category",
	"quantity":      "quantity",
	"unit_cost":     "unit_cost",
	"selling_price": "selling_price",
	"updated_at":    "updated_at",
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) FindByName(ctx context.Context, name string) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("item = ?", name).
		Order("category").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) FindByNameAndCategory(ctx context.Context, name, category string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).
		Where("item = ? AND category = ?", name, category).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, query *ListQuery) ([]models.Item, int64, error) {
	var items []models.Item
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Item{})

	if query.Search != "" {
		search := likePattern(query.Search)
		db = db.Where("LOWER(item) LIKE ? OR LOWER(category) LIKE ?", search, search)
	}

	if query.Filters["category"] != "" {
		db = db.Where("category = ?", query.Filters["category"])
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db, query, itemSortColumns, "item ASC, category ASC").Find(&items).Error
	return items, total, err
}

func (r *itemRepository) LowStock(ctx context.Context, threshold int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("quantity < ?", threshold).
		Order("quantity ASC, item ASC").
		Find(&items).Error
	return items, err
}

func (r *itemRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

// Upsert inserts a new (item, category) or adds the given quantity to the existing row
// and replaces its prices and unit. The audit entry is written in the same transaction.
func (r *itemRepository) Upsert(ctx context.Context, item *models.Item, user string) (string, error) {
	action := models.AuditActionAdd
	added := item.Quantity

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Item
		err := lockForUpdate(tx).
			Where("item = ? AND category = ?", item.Name, item.Category).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			action = models.AuditActionUpdate
			existing.Quantity += item.Quantity
			existing.UnitCost = item.UnitCost
			existing.SellingPrice = item.SellingPrice
			existing.Unit = item.Unit
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			*item = existing
		}

		return tx.Create(models.NewAuditLog(item, action, added, user)).Error
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// Delete removes an item and logs its prior values. Sales and installations keep their
// item name snapshot and lose the reference.
func (r *itemRepository) Delete(ctx context.Context, id uint, user string) (*models.Item, error) {
	var item models.Item
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&item, id).Error; err != nil {
			return err
		}
		if err := detachItems(tx, []uint{item.ID}); err != nil {
			return err
		}
		if err := tx.Delete(&models.Item{}, item.ID).Error; err != nil {
			return err
		}
		return tx.Create(models.NewAuditLog(&item, models.AuditActionDelete, item.Quantity, user)).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteAll empties the inventory, writing one Delete entry per removed item
func (r *itemRepository) DeleteAll(ctx context.Context, user string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.Item
		if err := lockForUpdate(tx).Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(items))
		entries := make([]*models.AuditLog, 0, len(items))
		for i := range items {
			ids = append(ids, items[i].ID)
			entries = append(entries, models.NewAuditLog(&items[i], models.AuditActionDelete, items[i].Quantity, user))
		}

		if err := detachItems(tx, ids); err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Item{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return tx.CreateInBatches(entries, 200).Error
	})
	return deleted, err
}

// ReplaceStock applies a stock sheet: each row sets the quantity of its (item, category),
// inserting rows that do not exist yet. All rows succeed or none do.
func (r *itemRepository) ReplaceStock(ctx context.Context, items []models.Item, user string) (added, updated int, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		added, updated = 0, 0
		for i := range items {
			row := &items[i]

			var existing models.Item
			findErr := lockForUpdate(tx).
				Where("item = ? AND category = ?", row.Name, row.Category).
				First(&existing).Error

			action := models.AuditActionAdd
			switch {
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				if err := tx.Create(row).Error; err != nil {
					return err
				}
				added++
			case findErr != nil:
				return findErr
			default:
				action = models.AuditActionUpdate
				existing.Quantity = row.Quantity
				existing.UnitCost = row.UnitCost
				existing.SellingPrice = row.SellingPrice
				existing.Unit = row.Unit
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				*row = existing
				updated++
			}

			if err := tx.Create(models.NewAuditLog(row, action, row.Quantity, user)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return added, updated, err
}

func detachItems(tx *gorm.DB, ids []uint) error {
	if err := tx.Model(&models.Sale{}).Where("item_id IN ?", ids).Update("item_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&models.Installation{}).Where("item_id IN ?", ids).Update("item_id", nil).Error
}
