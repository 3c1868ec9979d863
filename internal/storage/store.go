package storage

import (
	"context"
	"errors"
	"io"
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo carries the metadata the download path needs.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ErrObjectNotFound reports that the named object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// IsNotFound reports whether err means the object is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// Store abstracts object storage operations.
type Store interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error
	StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error)
	GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error)
	// RemoveObject is idempotent: removing an absent object succeeds.
	RemoveObject(ctx context.Context, bucket, object string) error
}

// Default is the main object store instance.
var Default Store

// DefaultTest is the test object store instance.
var DefaultTest Store
