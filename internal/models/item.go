package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a stock-keeping unit identified by its name and category
type Item struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"column:item;size:255;not null;uniqueIndex:idx_items_item_category" json:"item"`
	Category     string          `gorm:"size:100;not null;uniqueIndex:idx_items_item_category;index" json:"category"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"unit_cost"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"selling_price"`
	Unit         *string         `gorm:"size:50" json:"unit"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Item
func (Item) TableName() string {
	return "items"
}

// Normalize trims the identifying fields so (item, category) lookups are stable
func (i *Item) Normalize() {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	if i.Unit != nil {
		u := strings.TrimSpace(*i.Unit)
		if u == "" {
			i.Unit = nil
		} else {
			i.Unit = &u
		}
	}
}

// StockValue is quantity on hand valued at unit cost
func (i *Item) StockValue() decimal.Decimal {
	return i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// HasStock reports whether qty units can be taken from the item
func (i *Item) HasStock(qty int) bool {
	return qty > 0 && i.Quantity >= qty
}

// UnitLabel returns the unit or an empty string
func (i *Item) UnitLabel() string {
	if i.Unit == nil {
		return ""
	}
	return *i.Unit
}
