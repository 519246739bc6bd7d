package models

import (
	"time"
)

// Installation records items installed at a customer's site
type Installation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CustomerID  uint      `gorm:"not null;index" json:"customer_id"`
	ItemID      *uint     `gorm:"index" json:"item_id"`
	ItemName    string    `gorm:"size:255" json:"item_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	InstalledBy string    `gorm:"size:100" json:"installed_by"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	CreatedAt   time.Time `json:"created_at"`

	// Associations
	Customer *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Item     *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for Installation
func (Installation) TableName() string {
	return "installations"
}

// InstallationResponse is the JSON response format for installations
type InstallationResponse struct {
	ID           uint      `json:"id"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	ItemID       *uint     `json:"item_id"`
	ItemName     string    `json:"item_name"`
	Quantity     int       `json:"quantity"`
	InstalledBy  string    `json:"installed_by"`
	Date         time.Time `json:"date"`
}

// ToResponse converts Installation to InstallationResponse using loaded associations
func (i *Installation) ToResponse() InstallationResponse {
	resp := InstallationResponse{
		ID:          i.ID,
		CustomerID:  i.CustomerID,
		ItemID:      i.ItemID,
		ItemName:    i.ItemName,
		Quantity:    i.Quantity,
		InstalledBy: i.InstalledBy,
		Date:        i.Date,
	}
	if i.Customer != nil {
		resp.CustomerName = i.Customer.Name
	}
	if i.Item != nil {
		resp.ItemName = i.Item.Name
	}
	return resp
}
