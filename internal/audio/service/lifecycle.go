package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"voicerly_backend/internal/audio/domain"
	"voicerly_backend/internal/audio/repository"
	"voicerly_backend/internal/audio/transport"
	"voicerly_backend/internal/events"
	"voicerly_backend/platform/apperr"
	"voicerly_backend/platform/shortid"
)

const bytesPerMB = 1024 * 1024

// Delete removes the asset a share URL points at. A storage failure is
// logged and the metadata record is removed anyway.
func (s *Service) Delete(ctx context.Context, shareURL string) (transport.DeleteResponse, error) {
	if strings.TrimSpace(shareURL) == "" {
		return transport.DeleteResponse{}, apperr.BadRequest(msgNoURL)
	}

	id := ExtractShortID(shareURL)
	if !shortid.Valid(id) {
		return transport.DeleteResponse{}, apperr.BadRequest(msgInvalidID)
	}

	record, err := s.repo.GetActiveByShortID(ctx, id)
	if err != nil {
		return transport.DeleteResponse{}, upstream(err, msgDeleteFailed)
	}

	log := s.log.WithContext(ctx)
	if err := s.storage.DeleteObject(ctx, s.bucket, record.StoragePath); err != nil {
		log.StorageError("delete", record.StoragePath, err)
		s.bus.Publish(ctx, events.AudioStorageOrphaned{
			BaseEvent:   events.NewBaseEvent(),
			Bucket:      s.bucket,
			StoragePath: record.StoragePath,
			Reason:      "storage delete failed",
		})
	}

	if err := s.repo.Delete(ctx, record.ID); err != nil {
		log.DatabaseError("delete audio file", err)
		return transport.DeleteResponse{}, upstream(err, msgDeleteFailed)
	}

	s.bus.Publish(ctx, events.AudioDeleted{
		BaseEvent:   events.NewBaseEvent(),
		AssetID:     record.ID,
		ShortID:     id,
		StoragePath: record.StoragePath,
		SizeBytes:   record.FileSize,
	})

	return transport.DeleteResponse{Success: true, Message: "Audio file deleted successfully"}, nil
}

// ExtractShortID returns the segment after the last slash of a share URL,
// ignoring any query or fragment. A trailing slash yields an empty id.
func ExtractShortID(shareURL string) string {
	raw := strings.TrimSpace(shareURL)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw[strings.LastIndex(raw, "/")+1:]
}

// Lookup resolves an id to the share page view of an active asset.
func (s *Service) Lookup(ctx context.Context, id, origin string) (transport.AudioFileResponse, error) {
	if !shortid.Valid(id) {
		return transport.AudioFileResponse{}, apperr.BadRequest(msgInvalidID)
	}

	record, err := s.repo.GetActiveByShortID(ctx, id)
	if err != nil {
		return transport.AudioFileResponse{}, upstream(err, msgLookupFailed)
	}

	return transport.AudioFileResponse{
		ID:            record.ShortID,
		FileName:      record.FileName,
		OriginalName:  record.OriginalName,
		FileSize:      record.FileSize,
		MimeType:      record.MimeType,
		DownloadCount: record.DownloadCount,
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
		AudioURL:      s.storage.PublicURL(s.bucket, record.StoragePath),
		ShareURL:      s.shareURL(origin, record.ShortID),
	}, nil
}

// RecordDownload bumps the download counter and hands back a presigned
// download link.
func (s *Service) RecordDownload(ctx context.Context, id string) (transport.DownloadResponse, error) {
	if !shortid.Valid(id) {
		return transport.DownloadResponse{}, apperr.BadRequest(msgInvalidID)
	}

	record, err := s.repo.IncrementDownloadCount(ctx, id)
	if err != nil {
		return transport.DownloadResponse{}, upstream(err, msgDownloadFailed)
	}

	downloadName := downloadFileName(record)
	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, record.StoragePath, downloadName)
	if err != nil {
		s.log.WithContext(ctx).StorageError("presign", record.StoragePath, err)
		return transport.DownloadResponse{}, apperr.Upstream(msgDownloadFailed, err)
	}

	return transport.DownloadResponse{
		DownloadCount: record.DownloadCount,
		DownloadURL:   presigned.URL,
		FileName:      downloadName,
		ExpiresAt:     presigned.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

func downloadFileName(record repository.AudioFile) string {
	ext := strings.TrimPrefix(path.Ext(record.FileName), ".")
	if ext == "" {
		ext = domain.DefaultExtension
	}
	return fmt.Sprintf("recording-%s.%s", record.ShortID, ext)
}

// Stats reports aggregate counts for active assets. Assets never expire, so
// the old-file figures are always zero.
func (s *Service) Stats(ctx context.Context) (transport.FileStatsResponse, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("audio file stats", err)
		return transport.FileStatsResponse{}, upstream(err, msgStatsFailed)
	}

	return transport.FileStatsResponse{
		TotalFiles:     stats.TotalFiles,
		TotalSize:      stats.TotalSize,
		TotalSizeMB:    formatMB(stats.TotalSize),
		OldFiles:       0,
		OldFilesSize:   0,
		OldFilesSizeMB: formatMB(0),
		MaxAgeHours:    0,
	}, nil
}

// Cleanup is a no-op while assets are kept forever.
func (s *Service) Cleanup(ctx context.Context) transport.CleanupResponse {
	s.log.WithContext(ctx).Info("cleanup requested; assets do not expire")
	return transport.CleanupResponse{
		Success:          true,
		DeletedCount:     0,
		TotalSizeDeleted: 0,
		Message:          "Cleanup disabled - files are stored permanently",
	}
}

func formatMB(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/bytesPerMB)
}
