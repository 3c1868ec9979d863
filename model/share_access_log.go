package model

import "time"

type ShareAccessLog struct {
	ID uint64 `gorm:"primaryKey"`

	ShareLinkID uint64 `gorm:"column:share_link_id;not null;index"`
	FileID      uint64 `gorm:"column:file_id;not null;index"`
	OwnerID     uint64 `gorm:"column:owner_id;not null;index"`

	Filename   string `gorm:"column:filename;size:255;not null;default:''"`
	RemoteAddr string `gorm:"column:remote_addr;size:64;not null;default:''"`
	UserAgent  string `gorm:"column:user_agent;size:255;not null;default:''"`

	AccessedAt time.Time `gorm:"column:accessed_at;index"`
	CreatedAt  time.Time
}

// TableName returns the database table name.
func (ShareAccessLog) TableName() string {
	return "share_access_log"
}
