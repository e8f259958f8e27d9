package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"voicerly_backend/platform/apperr"
)

const audioFileNotFoundMessage = "Audio file not found"

const audioFileColumns = `id, short_id, file_name, original_name, file_size, mime_type, storage_path, download_count, is_active, created_at`

const (
	createAudioFileQuery = `
		INSERT INTO audio_files (short_id, file_name, original_name, file_size, mime_type, storage_path, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + audioFileColumns

	getActiveByShortIDQuery = `
		SELECT ` + audioFileColumns + `
		FROM audio_files
		WHERE short_id = $1 AND is_active = true`

	shortIDExistsQuery = `SELECT EXISTS (SELECT 1 FROM audio_files WHERE short_id = $1)`

	incrementDownloadCountQuery = `
		UPDATE audio_files
		SET download_count = download_count + 1
		WHERE short_id = $1 AND is_active = true
		RETURNING ` + audioFileColumns

	deleteAudioFileQuery = `DELETE FROM audio_files WHERE id = $1`

	statsQuery = `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0)
		FROM audio_files
		WHERE is_active = true`
)

// Repo implements the audio repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audio repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func scanAudioFile(row pgx.Row) (AudioFile, error) {
	var f AudioFile
	err := row.Scan(
		&f.ID,
		&f.ShortID,
		&f.FileName,
		&f.OriginalName,
		&f.FileSize,
		&f.MimeType,
		&f.StoragePath,
		&f.DownloadCount,
		&f.IsActive,
		&f.CreatedAt,
	)
	return f, err
}

// Create inserts an active audio record with a zero download count.
func (r *Repo) Create(ctx context.Context, params CreateAudioFileParams) (AudioFile, error) {
	f, err := scanAudioFile(r.pool.QueryRow(ctx, createAudioFileQuery,
		params.ShortID,
		params.FileName,
		params.OriginalName,
		params.FileSize,
		params.MimeType,
		params.StoragePath,
	))
	if err != nil {
		return AudioFile{}, fmt.Errorf("create audio file: %w", err)
	}
	return f, nil
}

// GetActiveByShortID retrieves an active record by its public id.
func (r *Repo) GetActiveByShortID(ctx context.Context, shortID string) (AudioFile, error) {
	f, err := scanAudioFile(r.pool.QueryRow(ctx, getActiveByShortIDQuery, shortID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AudioFile{}, apperr.NotFound(audioFileNotFoundMessage)
		}
		return AudioFile{}, fmt.Errorf("get audio file by short id: %w", err)
	}
	return f, nil
}

// ShortIDExists reports whether any record, active or not, uses shortID.
func (r *Repo) ShortIDExists(ctx context.Context, shortID string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, shortIDExistsQuery, shortID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check short id: %w", err)
	}
	return exists, nil
}

// IncrementDownloadCount atomically bumps the download counter.
func (r *Repo) IncrementDownloadCount(ctx context.Context, shortID string) (AudioFile, error) {
	f, err := scanAudioFile(r.pool.QueryRow(ctx, incrementDownloadCountQuery, shortID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AudioFile{}, apperr.NotFound(audioFileNotFoundMessage)
		}
		return AudioFile{}, fmt.Errorf("increment download count: %w", err)
	}
	return f, nil
}

// Delete removes a record by primary key.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, deleteAudioFileQuery, id)
	if err != nil {
		return fmt.Errorf("delete audio file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(audioFileNotFoundMessage)
	}
	return nil
}

// Stats counts active records and sums their sizes.
func (r *Repo) Stats(ctx context.Context) (FileStats, error) {
	var stats FileStats
	if err := r.pool.QueryRow(ctx, statsQuery).Scan(&stats.TotalFiles, &stats.TotalSize); err != nil {
		return FileStats{}, fmt.Errorf("audio file stats: %w", err)
	}
	return stats, nil
}
