package model

import "time"

type File struct {
	ID uint64 `gorm:"primaryKey" json:"id"`

	OwnerID uint64 `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Filename    string `gorm:"column:filename;size:255;not null" json:"filename"`
	ContentType string `gorm:"column:content_type;size:128;not null;default:''" json:"content_type"`
	Size        int64  `gorm:"column:size;not null;default:0" json:"size"`

	BucketName string `gorm:"column:bucket_name;size:64;not null;index:idx_bucket_object,priority:1" json:"-"`
	ObjectName string `gorm:"column:object_name;size:512;not null;index:idx_bucket_object,priority:2" json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index" json:"expires_at,omitempty"`
}

// TableName returns the database table name.
func (File) TableName() string {
	return "files"
}
