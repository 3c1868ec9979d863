package service

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/internal/storage"
	"ShareVault/model"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentTypeFor guesses a content type from the filename extension.
func ContentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// BuildObjectName derives a unique object key for an upload.
func BuildObjectName(ownerID uint64, filename string) string {
	return fmt.Sprintf("%d/%s%s", ownerID, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}

// UploadFile stores the blob first, then records the File row, so a File
// row always points at a durably stored object.
func UploadFile(
	ctx context.Context,
	ownerID uint64,
	filename string,
	contentType string,
	reader io.Reader,
	size int64,
	expiresAt *time.Time,
) (*model.File, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrInvalid
	}
	if size < 0 {
		return nil, ErrInvalid
	}
	if contentType == "" {
		contentType = ContentTypeFor(filename)
	}
	if storage.Default == nil {
		return nil, ErrUnavailable
	}

	bucket := config.AppConfig.BucketName
	objectName := BuildObjectName(ownerID, filename)

	if err := storage.Default.PutObject(ctx, bucket, objectName, reader, size, storage.PutOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}

	file := &model.File{
		OwnerID:     ownerID,
		Filename:    path.Base(filename),
		ContentType: contentType,
		Size:        size,
		BucketName:  bucket,
		ObjectName:  objectName,
		ExpiresAt:   expiresAt,
	}
	if err := repo.Db.Create(file).Error; err != nil {
		_ = storage.Default.RemoveObject(ctx, bucket, objectName)
		return nil, err
	}
	return file, nil
}

// GetFileById returns a file by ID.
func GetFileById(fileID uint64) (*model.File, error) {
	var file model.File
	if err := repo.Db.Where("id = ?", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// ListFiles returns the caller's files, newest first.
func ListFiles(ownerID uint64) ([]model.File, error) {
	var files []model.File
	err := repo.Db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// DeleteFile removes the blob, then the metadata row. The ordering matches
// the sweeper: metadata is never deleted before the blob is confirmed gone.
func DeleteFile(ctx context.Context, principal Principal, fileID uint64) error {
	file, err := GetFileById(fileID)
	if err != nil {
		return err
	}
	if file.OwnerID != principal.ID && !principal.IsAdmin {
		return ErrPermissionDenied
	}

	if storage.Default == nil {
		return ErrUnavailable
	}
	if err := storage.Default.RemoveObject(ctx, file.BucketName, file.ObjectName); err != nil && !storage.IsNotFound(err) {
		return ErrUnavailable
	}
	// share_links rows go with the file via FK cascade.
	return repo.Db.Delete(&model.File{}, file.ID).Error
}
