package model

import "time"

type ShareLink struct {
	ID uint64 `gorm:"primaryKey"`

	FileID uint64 `gorm:"column:file_id;not null;index"`
	File   File   `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE"`

	Token string `gorm:"column:token;size:64;uniqueIndex;not null"`

	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	MaxViews  *int       `gorm:"column:max_views"`
	Views     int        `gorm:"column:views;not null;default:0"`

	IsActive bool `gorm:"column:is_active;not null;default:true;index"`

	CreatedAt time.Time
}

// TableName returns the database table name.
func (ShareLink) TableName() string {
	return "share_links"
}

// Usable reports whether the link currently grants access.
func (l *ShareLink) Usable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return false
	}
	if l.MaxViews != nil && l.Views >= *l.MaxViews {
		return false
	}
	return true
}
