package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore is the storage/export service boundary. The backup engine and
// DR pipeline only ever use these primitives; the sandbox and production
// namespaces are distinct key prefixes inside the backup bucket.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, key string, data []byte) error
	Copy(ctx context.Context, bucket, srcKey, dstKey string) error
	List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	Remove(ctx context.Context, bucket, key string) error
}

type minioStore struct {
	client *minio.Client
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client}, nil
}

func (m *minioStore) EnsureBucket(ctx context.Context, bucket string) error {
	found, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	_, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *minioStore) Copy(ctx context.Context, bucket, srcKey, dstKey string) error {
	_, err := m.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: bucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: bucket, Object: srcKey},
	)
	return err
}

func (m *minioStore) List(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var objects []ObjectInfo
	for object := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, object.Err
		}
		objects = append(objects, ObjectInfo{Key: object.Key, Size: object.Size})
	}
	return objects, nil
}

func (m *minioStore) Remove(ctx context.Context, bucket, key string) error {
	return m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

// BackupLocation builds the content-addressed export path for one backup run.
func BackupLocation(kind string, at time.Time) string {
	return fmt.Sprintf("backups/%s/%s", strings.ToLower(kind), at.UTC().Format("2006-01-02T15-04-05Z"))
}
