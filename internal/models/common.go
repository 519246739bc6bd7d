package models

import (
	"time"
)

// RefreshToken is a long-lived token exchanged for new access tokens
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Token     string     `gorm:"size:64;uniqueIndex" json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Associations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for RefreshToken
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// IsExpired returns true if the refresh token has expired
func (r *RefreshToken) IsExpired() bool {
	if r.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*r.ExpiresAt)
}

// DateRange is an inclusive range of whole days. Nil bounds are open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Bounds returns [start of first day, start of the day after the last day)
func (r DateRange) Bounds() (from, to *time.Time) {
	if r.Start != nil {
		s := truncateDay(*r.Start)
		from = &s
	}
	if r.End != nil {
		e := truncateDay(*r.End).AddDate(0, 0, 1)
		to = &e
	}
	return from, to
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
