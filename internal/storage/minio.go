package storage

import (
	"ShareVault/config"
	"context"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements Store with a MinIO client.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds a Store from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// PutObject uploads an object to MinIO.
func (s *MinioStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// StatObject fetches object metadata from MinIO.
func (s *MinioStore) StatObject(ctx context.Context, bucket, object string) (ObjectInfo, error) {
	stat, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapMinioError(err)
	}
	return ObjectInfo{
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}, nil
}

// GetObject opens an object stream and its metadata from MinIO.
func (s *MinioStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	info := ObjectInfo{
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}
	return obj, info, nil
}

// RemoveObject deletes an object from MinIO. MinIO treats removal of an
// absent key as success, which keeps sweeper retries idempotent.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, object string) error {
	err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{})
	if err != nil && IsNotFound(mapMinioError(err)) {
		return nil
	}
	return err
}

func mapMinioError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == 404 {
		return ErrObjectNotFound
	}
	return err
}

var Minio *minio.Client

// InitMinio initializes the MinIO client and main bucket.
func InitMinio() {
	client := newMinioClient()
	ensureBucket(client, config.AppConfig.BucketName)
	Minio = client
	Default = NewMinioStore(client)
}

// InitMinioTest initializes the test MinIO bucket.
func InitMinioTest() {
	client := newMinioClient()
	ensureBucket(client, config.AppConfig.BucketNameTest)
	Minio = client
	DefaultTest = NewMinioStore(client)
}

func newMinioClient() *minio.Client {
	client, err := minio.New(fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort), &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: false,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	return client
}

func ensureBucket(client *minio.Client, bucket string) {
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
}
