// Package storage provides a domain-agnostic interface for S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectExists is returned when an upload would overwrite an existing object.
var ErrObjectExists = errors.New("object already exists")

// PresignedURL contains the URL and metadata for a presigned download operation.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StorageService defines the interface for object storage operations.
type StorageService interface {
	// UploadFile stores reader under fileKey without overwriting. Returns the
	// stored key.
	UploadFile(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) (string, error)

	// DeleteObject removes an object from storage.
	DeleteObject(ctx context.Context, bucket, fileKey string) error

	// PublicURL returns the anonymous playback URL of an object.
	PublicURL(bucket, fileKey string) string

	// GenerateDownloadURL creates a presigned URL that downloads the object
	// as downloadName.
	GenerateDownloadURL(ctx context.Context, bucket, fileKey, downloadName string) (*PresignedURL, error)

	// EnsureBucketExists creates the bucket if it doesn't exist and allows
	// anonymous reads on its objects.
	EnsureBucketExists(ctx context.Context, bucket string) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOPublicURL() string
	IsMinIOEnabled() bool
}
