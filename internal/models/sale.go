package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale records units sold from an item. Money fields are captured at sale time.
type Sale struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ItemID       *uint           `gorm:"index" json:"item_id"`
	ItemName     string          `gorm:"column:item;size:255;not null" json:"item"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	TotalSale    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_sale"`
	Cost         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	Profit       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"profit"`
	Date         time.Time       `gorm:"not null;index" json:"date"`
	CustomerID   *uint           `gorm:"index" json:"customer_id"`
	User         string          `gorm:"size:100" json:"user"`
	CreatedAt    time.Time       `json:"created_at"`

	// Associations
	Item     *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:SET NULL" json:"-"`
	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
}

// TableName specifies the table name for Sale
func (Sale) TableName() string {
	return "sales"
}

// ApplyPricing snapshots the item's name and prices and derives the totals:
// total = q*price, cost = q*unit_cost, profit = total - cost.
func (s *Sale) ApplyPricing(item *Item) {
	qty := decimal.NewFromInt(int64(s.Quantity))

	id := item.ID
	s.ItemID = &id
	s.ItemName = item.Name
	s.SellingPrice = item.SellingPrice
	s.TotalSale = qty.Mul(item.SellingPrice)
	s.Cost = qty.Mul(item.UnitCost)
	s.Profit = s.TotalSale.Sub(s.Cost)
}

// SaleSummary aggregates a set of sales
type SaleSummary struct {
	Transactions int             `json:"transactions"`
	TotalQty     int             `json:"total_qty"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

// Summarize totals the given sales
func Summarize(sales []Sale) SaleSummary {
	sum := SaleSummary{
		TotalSales:  decimal.Zero,
		TotalCost:   decimal.Zero,
		TotalProfit: decimal.Zero,
	}
	for _, s := range sales {
		sum.Transactions++
		sum.TotalQty += s.Quantity
		sum.TotalSales = sum.TotalSales.Add(s.TotalSale)
		sum.TotalCost = sum.TotalCost.Add(s.Cost)
		sum.TotalProfit = sum.TotalProfit.Add(s.Profit)
	}
	return sum
}
