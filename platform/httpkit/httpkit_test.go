package httpkit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voicerly_backend/platform/apperr"
	"voicerly_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleErrorMapsKinds(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.Validation("file is empty"), http.StatusBadRequest},
		{"not found", apperr.NotFound("audio file not found"), http.StatusNotFound},
		{"rate limited", apperr.RateLimited("slow down"), http.StatusTooManyRequests},
		{"upstream", apperr.Upstream("storage failed", errors.New("io")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/", func(c *gin.Context) { HandleError(c, tc.err) })

			rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestHandleErrorSetsRetryAfter(t *testing.T) {
	engine := gin.New()
	engine.GET("/", func(c *gin.Context) {
		HandleError(c, apperr.RateLimited("slow down").WithDetails(apperr.NewRetryAfter(1500*time.Millisecond)))
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	engine := gin.New()
	engine.GET("/", BearerTokenRequired("s3cret"), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		header string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Basic s3cret", http.StatusUnauthorized},
		{"Bearer s3cret", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if rec := serve(engine, req); rec.Code != tc.status {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.status, rec.Code)
		}
	}
}

func TestBearerTokenRequiredOpenWhenUnset(t *testing.T) {
	engine := gin.New()
	engine.GET("/", BearerTokenRequired(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	if rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Fatalf("expected open route, got %d", rec.Code)
	}
}

func TestIPRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, logger.Nop())
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		if rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		id, _ := c.Request.Context().Value(logger.RequestIDKey).(string)
		c.String(http.StatusOK, id)
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(rec.Body.String()); err != nil {
		t.Fatalf("expected uuid request id, got %q", rec.Body.String())
	}
	if rec.Header().Get(HeaderRequestID) != rec.Body.String() {
		t.Fatal("expected response header to echo request id")
	}
}
