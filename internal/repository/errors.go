package repository

import (
	"fmt"

	"github.com/sjperalta/solarstock-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsufficientStockError is returned when a sale or installation asks for more units than are on hand
type InsufficientStockError struct {
	ItemID    uint
	Item      string
	Current   int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock. Current stock: %d, requested quantity: %d.", e.Current, e.Requested)
}

// MissingReferenceError reports a foreign key that points at no row
type MissingReferenceError struct {
	Entity string
	ID     uint
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s %d not found.", e.Entity, e.ID)
}

// lockForUpdate adds SELECT ... FOR UPDATE where the driver supports row locks.
// SQLite serializes writers on its single connection instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// takeStock decrements an item's quantity inside tx. It fails with gorm.ErrRecordNotFound
// or *InsufficientStockError and leaves the row unchanged in both cases.
func takeStock(tx *gorm.DB, itemID uint, qty int) (*models.Item, error) {
	var item models.Item
	if err := lockForUpdate(tx).First(&item, itemID).Error; err != nil {
		return nil, err
	}

	if !item.HasStock(qty) {
		return nil, &InsufficientStockError{ItemID: item.ID, Item: item.Name, Current: item.Quantity, Requested: qty}
	}

	res := tx.Model(&models.Item{}).
		Where("id = ? AND quantity >= ?", itemID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &InsufficientStockError{ItemID: item.ID, Item: item.Name, Current: item.Quantity, Requested: qty}
	}

	item.Quantity -= qty
	return &item, nil
}
