package storage

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"github.com/bhanu100141/StudyBuddy/internal/config"
)

// ObjectStore stores uploaded files and hands out public URLs for them.
type ObjectStore interface {
	Upload(path string, data []byte, contentType string) error
	PublicURL(path string) string
}

// OSSStore is an ObjectStore backed by an Aliyun OSS bucket.
type OSSStore struct {
	bucket        *oss.Bucket
	publicBaseURL string
}

// NewOSSStore connects to the configured bucket. Returns nil (and no error)
// when OSS is not configured, so the server can boot without file uploads.
func NewOSSStore(cfg *config.Config) (*OSSStore, error) {
	if cfg.OSSEndpoint == "" || cfg.OSSAccessKeyID == "" || cfg.OSSAccessKeySecret == "" || cfg.OSSBucket == "" {
		return nil, nil
	}

	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create OSS client: %w", err)
	}

	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSS bucket %s: %w", cfg.OSSBucket, err)
	}

	return &OSSStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.OSSPublicBaseURL, "/"),
	}, nil
}

// Upload writes the object at path with the given content type.
func (s *OSSStore) Upload(path string, data []byte, contentType string) error {
	return s.bucket.PutObject(path, bytes.NewReader(data), oss.ContentType(contentType))
}

// PublicURL returns the retrieval URL for an uploaded object.
func (s *OSSStore) PublicURL(path string) string {
	return s.publicBaseURL + "/" + path
}
