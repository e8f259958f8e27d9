package service

import (
	"bytes"
	"context"
	"strings"

	"voicerly_backend/internal/audio/domain"
	"voicerly_backend/internal/audio/repository"
	"voicerly_backend/internal/audio/transport"
	"voicerly_backend/internal/events"
	"voicerly_backend/platform/apperr"
	"voicerly_backend/platform/sanitize"

	"github.com/gabriel-vasile/mimetype"
)

// UploadRequest is one upload attempt.
type UploadRequest struct {
	ClientKey string
	FileName  string
	MimeType  string
	Origin    string
	Payload   []byte
	// HasFile is false when the form carried no audio part at all.
	HasFile bool
}

// Admit runs the admission pipeline and, on success, stores the payload and
// its metadata. Checks short-circuit in order: rate limit, presence,
// content validation; storage and persistence failures are reported as
// upstream errors.
func (s *Service) Admit(ctx context.Context, req UploadRequest) (transport.UploadResponse, error) {
	log := s.log.WithContext(ctx)

	if decision := s.limiter.CheckAndConsume(ctx, req.ClientKey); !decision.Allowed {
		log.RateLimitExceeded(req.ClientKey, "upload")
		return transport.UploadResponse{}, apperr.RateLimited(s.rateLimitMessage()).
			WithDetails(apperr.NewRetryAfter(decision.RetryAfter))
	}

	if !req.HasFile {
		log.UploadRejected(msgNoAudioFile, req.ClientKey)
		return transport.UploadResponse{}, apperr.BadRequest(msgNoAudioFile)
	}

	originalName := sanitize.FileName(req.FileName)
	extension := domain.ResolveExtension(req.MimeType, originalName, s.policy)

	if err := domain.Validate(req.Payload, extension, req.MimeType, s.policy); err != nil {
		log.UploadRejected(err.Error(), req.ClientKey)
		return transport.UploadResponse{}, err
	}

	id, err := s.generateUniqueID(ctx)
	if err != nil {
		return transport.UploadResponse{}, err
	}
	fileName := id + "." + extension
	mimeType := storedMimeType(req.MimeType, req.Payload, extension)
	size := int64(len(req.Payload))

	storagePath, err := s.storage.UploadFile(ctx, s.bucket, fileName, mimeType, bytes.NewReader(req.Payload), size)
	if err != nil {
		log.StorageError("upload", fileName, err)
		return transport.UploadResponse{}, apperr.Upstream(msgUploadFailed, err)
	}

	record, err := s.repo.Create(ctx, repository.CreateAudioFileParams{
		ShortID:      id,
		FileName:     fileName,
		OriginalName: originalName,
		FileSize:     size,
		MimeType:     mimeType,
		StoragePath:  storagePath,
	})
	if err != nil {
		log.DatabaseError("create audio file", err)
		s.discardObject(ctx, storagePath)
		return transport.UploadResponse{}, apperr.Upstream(msgUploadFailed, err)
	}

	s.bus.Publish(ctx, events.AudioAdmitted{
		BaseEvent:   events.NewBaseEvent(),
		AssetID:     record.ID,
		ShortID:     id,
		StoragePath: storagePath,
		MimeType:    mimeType,
		SizeBytes:   size,
	})

	return transport.UploadResponse{
		URL:           s.shareURL(req.Origin, id),
		ID:            id,
		DocumentID:    record.ID,
		StorageFileID: storagePath,
	}, nil
}

// generateUniqueID draws ids until one is unused in the metadata store.
func (s *Service) generateUniqueID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", apperr.Wrap(apperr.KindInternal, msgIDGenerationErr, err)
		}
		exists, err := s.repo.ShortIDExists(ctx, id)
		if err != nil {
			s.log.WithContext(ctx).DatabaseError("check short id", err)
			return "", apperr.Upstream(msgUploadFailed, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", apperr.Internal(msgIDGenerationErr)
}

// discardObject removes an object written for a failed admission.
func (s *Service) discardObject(ctx context.Context, storagePath string) {
	if err := s.storage.DeleteObject(ctx, s.bucket, storagePath); err != nil {
		s.log.WithContext(ctx).StorageError("discard", storagePath, err)
		s.bus.Publish(ctx, events.AudioStorageOrphaned{
			BaseEvent:   events.NewBaseEvent(),
			Bucket:      s.bucket,
			StoragePath: storagePath,
			Reason:      "metadata insert failed",
		})
	}
}

// storedMimeType keeps the declared type; when none was sent it is sniffed,
// falling back to audio/<extension>.
func storedMimeType(declared string, payload []byte, extension string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	detected := mimetype.Detect(payload)
	if detected != nil && !detected.Is("application/octet-stream") && !detected.Is("text/plain") {
		return detected.String()
	}
	return "audio/" + extension
}
