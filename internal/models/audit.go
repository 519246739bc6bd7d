package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Audit actions recorded against items
const (
	AuditActionAdd          = "Add"
	AuditActionUpdate       = "Update"
	AuditActionDelete       = "Delete"
	AuditActionSale         = "Sale"
	AuditActionInstallation = "Installation"
)

// AuditLog is an append-only record of an item mutation
type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Item         string          `gorm:"size:255;not null" json:"item"`
	Category     string          `gorm:"size:100" json:"category"`
	Action       string          `gorm:"size:20;not null;index" json:"action"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_cost"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"selling_price"`
	User         string          `gorm:"size:100" json:"user"`
	Timestamp    time.Time       `gorm:"not null;index" json:"timestamp"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_log"
}

// NewAuditLog builds an entry from the item's current values
func NewAuditLog(item *Item, action string, quantity int, user string) *AuditLog {
	return &AuditLog{
		Item:         item.Name,
		Category:     item.Category,
		Action:       action,
		Quantity:     quantity,
		UnitCost:     item.UnitCost,
		SellingPrice: item.SellingPrice,
		User:         user,
		Timestamp:    time.Now().UTC(),
	}
}
