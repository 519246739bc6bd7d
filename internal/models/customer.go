package models

import (
	"strings"
	"time"
)

// Customer is an entry in the customer directory, unique by name
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	Address   string    `gorm:"type:text" json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// Normalize trims every field and upper-cases name, email and address
func (c *Customer) Normalize() {
	c.Name = strings.ToUpper(strings.TrimSpace(c.Name))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToUpper(strings.TrimSpace(c.Email))
	c.Address = strings.ToUpper(strings.TrimSpace(c.Address))
}
