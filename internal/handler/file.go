package handler

import (
	"ShareVault/config"
	"ShareVault/internal/dto"
	"ShareVault/internal/service"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// UploadFile stores a multipart upload and records its metadata.
func UploadFile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}

	var expiresAt *time.Time
	if raw := strings.TrimSpace(c.PostForm("expire_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > config.AppConfig.ShareMaxExpireDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expire_days"})
			return
		}
		at := time.Now().Add(time.Duration(days) * 24 * time.Hour)
		expiresAt = &at
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open upload failed"})
		return
	}
	defer src.Close()

	file, err := service.UploadFile(
		c.Request.Context(),
		principal.ID,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		src,
		fileHeader.Size,
		expiresAt,
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		FileID:    file.ID,
		Filename:  file.Filename,
		Size:      file.Size,
		ExpiresAt: file.ExpiresAt,
	})
}

// ListFiles returns the caller's files.
func ListFiles(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	files, err := service.ListFiles(principal.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list files failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": files})
}

// DeleteFile removes a file's blob and metadata.
func DeleteFile(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	var req dto.DeleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := service.DeleteFile(c.Request.Context(), principal, req.FileID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
}

// writeServiceError maps the service error taxonomy onto HTTP codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, service.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
