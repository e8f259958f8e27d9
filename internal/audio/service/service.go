package service

import (
	"fmt"
	"strings"
	"time"

	"voicerly_backend/internal/adapters/storage"
	"voicerly_backend/internal/audio/domain"
	"voicerly_backend/internal/audio/repository"
	"voicerly_backend/internal/events"
	"voicerly_backend/internal/ratelimit"
	"voicerly_backend/platform/apperr"
	"voicerly_backend/platform/logger"
	"voicerly_backend/platform/shortid"
)

const (
	defaultBaseURL = "http://localhost:3000"

	msgNoAudioFile     = "No audio file provided"
	msgNoURL           = "No URL provided"
	msgInvalidID       = "Invalid audio ID format"
	msgUploadFailed    = "Failed to upload file to storage"
	msgDeleteFailed    = "Failed to delete audio file"
	msgLookupFailed    = "Failed to load audio file"
	msgDownloadFailed  = "Failed to prepare download"
	msgStatsFailed     = "Internal server error"
	msgIDGenerationErr = "Failed to generate audio id"

	maxIDAttempts = 3
)

// Service provides the audio admission pipeline and asset lifecycle.
type Service struct {
	repo      repository.Repository
	storage   storage.StorageService
	bucket    string
	limiter   ratelimit.Limiter
	rateLimit ratelimit.Policy
	policy    domain.Policy
	baseURL   string
	bus       events.Bus
	log       *logger.Logger
	newID     func() (string, error)
}

// New creates a new audio service.
func New(
	repo repository.Repository,
	storageSvc storage.StorageService,
	bucket string,
	limiter ratelimit.Limiter,
	rateLimit ratelimit.Policy,
	policy domain.Policy,
	baseURL string,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		storage:   storageSvc,
		bucket:    bucket,
		limiter:   limiter,
		rateLimit: rateLimit,
		policy:    policy,
		baseURL:   strings.TrimRight(baseURL, "/"),
		bus:       bus,
		log:       log,
		newID:     shortid.New,
	}
}

// SetIDGenerator replaces the short id source.
func (s *Service) SetIDGenerator(fn func() (string, error)) {
	s.newID = fn
}

// shareBaseURL prefers the configured base URL, then the caller's origin.
func (s *Service) shareBaseURL(origin string) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
		return origin
	}
	return defaultBaseURL
}

func (s *Service) shareURL(origin, id string) string {
	return s.shareBaseURL(origin) + "/share/" + id
}

func (s *Service) rateLimitMessage() string {
	per := "hour"
	if s.rateLimit.Window != time.Hour {
		per = s.rateLimit.Window.String()
	}
	return fmt.Sprintf("Rate limit exceeded. Maximum %d uploads per %s.", s.rateLimit.Limit, per)
}

// upstream keeps typed errors and wraps anything else as a dependency failure.
func upstream(err error, message string) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Upstream(message, err)
}
