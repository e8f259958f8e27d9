package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "voicerly_backend/internal/http"
	"voicerly_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testConfig struct {
	burst   int
	proxies []string
}

func (c testConfig) GetHTTPAddr() string          { return ":0" }
func (c testConfig) GetCORSOrigins() []string     { return []string{"http://localhost:3000"} }
func (c testConfig) GetAPIRatePerSecond() float64 { return 0.001 }
func (c testConfig) GetAPIRateBurst() int         { return c.burst }
func (c testConfig) GetTrustedProxies() []string  { return c.proxies }

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	ctx.Engine.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

func newApp(health apphttp.HealthChecker, burst int) *apphttp.App {
	return &apphttp.App{
		Config:  testConfig{burst: burst},
		Logger:  logger.Nop(),
		Health:  health,
		Modules: []apphttp.Module{pingModule{}},
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newApp(fakeHealth{}, 5)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	New(newApp(fakeHealth{err: errors.New("down")}, 5)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestModulesMountedBehindIPLimiter(t *testing.T) {
	engine := New(newApp(fakeHealth{}, 2))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newApp(fakeHealth{}, 5)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func clientIPFor(engine *gin.Engine, remoteAddr, forwardedFor string) string {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestForwardedForIgnoredFromUntrustedPeer(t *testing.T) {
	engine := New(newApp(fakeHealth{}, 5))

	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2"} {
		if got := clientIPFor(engine, "203.0.113.9:4711", spoofed); got != "203.0.113.9" {
			t.Errorf("X-Forwarded-For %s: client ip = %q, want socket peer", spoofed, got)
		}
	}
}

func TestForwardedForHonouredFromTrustedProxy(t *testing.T) {
	app := newApp(fakeHealth{}, 5)
	app.Config = testConfig{burst: 5, proxies: []string{"10.0.0.0/8"}}
	engine := New(app)

	if got := clientIPFor(engine, "10.1.2.3:4711", "198.51.100.7"); got != "198.51.100.7" {
		t.Errorf("client ip = %q, want forwarded address", got)
	}
	if got := clientIPFor(engine, "203.0.113.9:4711", "198.51.100.7"); got != "203.0.113.9" {
		t.Errorf("client ip = %q, want untrusted peer", got)
	}
}
