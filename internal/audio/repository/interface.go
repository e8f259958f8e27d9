package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AudioFile is a stored audio asset's metadata record.
type AudioFile struct {
	ID            uuid.UUID `db:"id"`
	ShortID       string    `db:"short_id"`
	FileName      string    `db:"file_name"`
	OriginalName  string    `db:"original_name"`
	FileSize      int64     `db:"file_size"`
	MimeType      string    `db:"mime_type"`
	StoragePath   string    `db:"storage_path"`
	DownloadCount int       `db:"download_count"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
}

// CreateAudioFileParams contains data for creating an audio record.
type CreateAudioFileParams struct {
	ShortID      string
	FileName     string
	OriginalName string
	FileSize     int64
	MimeType     string
	StoragePath  string
}

// FileStats aggregates the active audio records.
type FileStats struct {
	TotalFiles int64
	TotalSize  int64
}

// Repository defines audio metadata storage operations.
type Repository interface {
	Create(ctx context.Context, params CreateAudioFileParams) (AudioFile, error)
	GetActiveByShortID(ctx context.Context, shortID string) (AudioFile, error)
	ShortIDExists(ctx context.Context, shortID string) (bool, error)
	IncrementDownloadCount(ctx context.Context, shortID string) (AudioFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (FileStats, error)
}
