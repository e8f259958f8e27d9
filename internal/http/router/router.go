package router

import (
	"context"
	"net/http"
	"time"

	apphttp "voicerly_backend/internal/http"
	"voicerly_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const healthTimeout = 2 * time.Second

// New builds the Gin engine and mounts every module under /api/v1.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	setTrustedProxies(engine, app)
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config.GetCORSOrigins())))

	engine.GET("/api/health", health(app.Health))

	ipLimiter := httpkit.NewIPRateLimiter(
		rate.Limit(app.Config.GetAPIRatePerSecond()),
		app.Config.GetAPIRateBurst(),
		app.Logger,
	)

	v1 := engine.Group("/api/v1")
	v1.Use(ipLimiter.RateLimit())

	routerCtx := &apphttp.RouterContext{
		Engine: engine,
		V1:     v1,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module registered", "module", module.Name())
	}

	return engine
}

// setTrustedProxies limits which peers may set X-Forwarded-For. With no
// proxies configured the client address is always the socket peer, so the
// upload limit cannot be sidestepped with a forged header.
func setTrustedProxies(engine *gin.Engine, app *apphttp.App) {
	proxies := app.Config.GetTrustedProxies()
	if len(proxies) == 0 {
		proxies = nil
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		app.Logger.Error("invalid trusted proxies; forwarded headers ignored", "error", err)
		_ = engine.SetTrustedProxies(nil)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.HeaderRequestID},
		ExposeHeaders:    []string{httpkit.HeaderRequestID, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func health(checker apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				httpkit.Error(c, http.StatusServiceUnavailable, "database unavailable", nil)
				return
			}
		}
		httpkit.OK(c, gin.H{"status": "ok"})
	}
}
