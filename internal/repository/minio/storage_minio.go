package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

type Storage struct {
	client    *minio.Client
	publicURL string
}

// NewStorage wraps client. Object URLs are built from publicURL, or from the
// client endpoint when publicURL is empty.
func NewStorage(client *minio.Client, publicURL string) *Storage {
	base := strings.TrimRight(publicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &Storage{client: client, publicURL: base}
}

// EnsureBucket creates bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", bucket, objectName, err)
	}
	return s.ObjectURL(bucket, objectName), nil
}

func (s *Storage) Remove(ctx context.Context, bucket, objectName string) error {
	return s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *Storage) ObjectURL(bucket, objectName string) string {
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + escapeObjectPath(objectName)
}

func escapeObjectPath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ ports.ObjectStorage = (*Storage)(nil)
