// Package audio provides the voice-memo asset module: upload admission,
// share lookup, download counting, deletion and maintenance stats.
package audio

import (
	"voicerly_backend/internal/adapters/storage"
	"voicerly_backend/internal/audio/domain"
	"voicerly_backend/internal/audio/handler"
	"voicerly_backend/internal/audio/repository"
	"voicerly_backend/internal/audio/service"
	"voicerly_backend/internal/events"
	apphttp "voicerly_backend/internal/http"
	"voicerly_backend/internal/ratelimit"
	"voicerly_backend/platform/config"
	"voicerly_backend/platform/httpkit"
	"voicerly_backend/platform/logger"
	"voicerly_backend/platform/validator"
)

// ModuleConfig is the configuration the audio module reads.
type ModuleConfig interface {
	config.UploadConfig
	config.MaintenanceConfig
	GetMinioBucketAudio() string
}

// Module is the audio bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	token   string
}

// NewModule creates and initializes the audio module with all its dependencies.
func NewModule(
	repo repository.Repository,
	storageSvc storage.StorageService,
	limiter ratelimit.Limiter,
	eventBus events.Bus,
	val *validator.Validator,
	cfg ModuleConfig,
	log *logger.Logger,
) *Module {
	policy := domain.Policy{
		MaxFileSize:       cfg.GetUploadMaxFileSize(),
		AllowedMimeTypes:  cfg.GetAllowedMimeTypes(),
		AllowedExtensions: cfg.GetAllowedExtensions(),
		RequireSignature:  cfg.GetRequireAudioSignature(),
	}
	ratePolicy := ratelimit.Policy{
		Limit:  cfg.GetUploadMaxPerWindow(),
		Window: cfg.GetUploadRateWindow(),
	}

	svc := service.New(repo, storageSvc, cfg.GetMinioBucketAudio(), limiter, ratePolicy, policy, cfg.GetAppBaseURL(), eventBus, log)

	return &Module{
		handler: handler.New(svc, val, policy.MaxFileSize),
		token:   cfg.GetMaintenanceToken(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audio"
}

// RegisterHandlers subscribes the module's activity log to its own events.
func (m *Module) RegisterHandlers(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(events.AudioAdmitted{}.EventName(), admittedLogger(log))
	bus.Subscribe(events.AudioDeleted{}.EventName(), deletedLogger(log))
}

// RegisterRoutes mounts audio routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1)

	maintenance := ctx.V1.Group("")
	maintenance.Use(httpkit.BearerTokenRequired(m.token))
	m.handler.RegisterMaintenanceRoutes(maintenance)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
