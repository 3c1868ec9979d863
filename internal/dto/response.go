package dto

import "time"

// ShareResponse is returned when a share link is created or reused.
type ShareResponse struct {
	Token     string     `json:"token"`
	ShareURL  string     `json:"share_url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShareMetaResponse describes a link without consuming a view.
type ShareMetaResponse struct {
	Filename    string     `json:"filename"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Views       int        `json:"views"`
	MaxViews    *int       `json:"max_views,omitempty"`
}

// UploadResponse is returned after a completed upload.
type UploadResponse struct {
	FileID    uint64     `json:"file_id"`
	Filename  string     `json:"filename"`
	Size      int64      `json:"size"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
