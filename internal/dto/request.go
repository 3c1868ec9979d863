package dto

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateShareRequest struct {
	FileID     uint64 `json:"file_id" binding:"required"`
	ExpireDays int    `json:"expire_days"`
	MaxViews   *int   `json:"max_views"`
}

type EnsureShareRequest struct {
	FileID     uint64 `json:"file_id" binding:"required"`
	ExpireDays int    `json:"expire_days"`
	MaxViews   *int   `json:"max_views"`
	Reuse      bool   `json:"reuse"`
}

type DeleteFileRequest struct {
	FileID uint64 `json:"file_id" binding:"required"`
}
