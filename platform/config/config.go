// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
	GetAPIRatePerSecond() float64
	GetAPIRateBurst() int
	GetTrustedProxies() []string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOPublicURL() string
	GetMinioBucketAudio() string
	IsMinIOEnabled() bool
}

// RedisConfig provides settings for Redis-backed components.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	IsRedisEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// UploadConfig provides the audio admission limits.
type UploadConfig interface {
	GetUploadMaxFileSize() int64
	GetUploadMaxPerWindow() int
	GetUploadRateWindow() time.Duration
	GetAllowedMimeTypes() []string
	GetAllowedExtensions() []string
	GetRequireAudioSignature() bool
	GetAppBaseURL() string
}

// MaintenanceConfig provides the bearer token for maintenance endpoints.
type MaintenanceConfig interface {
	GetMaintenanceToken() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	AppBaseURL        string
	DatabaseURL       string
	CORSOrigins       []string
	APIRatePerSecond  float64
	APIRateBurst      int
	TrustedProxies    []string
	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOPublicURL    string
	MinioBucketAudio  string
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	UploadMaxFileSize int64
	UploadMaxPerHour  int
	UploadRateWindow  time.Duration
	AllowedMimeTypes  []string
	AllowedExtensions []string
	RequireSignature  bool
	MaintenanceToken  string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string          { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string     { return c.CORSOrigins }
func (c *Config) GetAPIRatePerSecond() float64 { return c.APIRatePerSecond }
func (c *Config) GetAPIRateBurst() int         { return c.APIRateBurst }
func (c *Config) GetTrustedProxies() []string  { return c.TrustedProxies }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string    { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string   { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string   { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool        { return c.MinIOUseSSL }
func (c *Config) GetMinioBucketAudio() string { return c.MinioBucketAudio }
func (c *Config) IsMinIOEnabled() bool        { return c.MinIOEndpoint != "" }

// GetMinIOPublicURL returns the public object base URL, derived from the
// endpoint when not configured explicitly.
func (c *Config) GetMinIOPublicURL() string {
	if c.MinIOPublicURL != "" {
		return strings.TrimRight(c.MinIOPublicURL, "/")
	}
	scheme := "http"
	if c.MinIOUseSSL {
		scheme = "https"
	}
	return scheme + "://" + c.MinIOEndpoint
}

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) IsRedisEnabled() bool      { return c.RedisURL != "" }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// UploadConfig implementation
func (c *Config) GetUploadMaxFileSize() int64        { return c.UploadMaxFileSize }
func (c *Config) GetUploadMaxPerWindow() int         { return c.UploadMaxPerHour }
func (c *Config) GetUploadRateWindow() time.Duration { return c.UploadRateWindow }
func (c *Config) GetAllowedMimeTypes() []string      { return c.AllowedMimeTypes }
func (c *Config) GetAllowedExtensions() []string     { return c.AllowedExtensions }
func (c *Config) GetRequireAudioSignature() bool     { return c.RequireSignature }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }

// MaintenanceConfig implementation
func (c *Config) GetMaintenanceToken() string { return c.MaintenanceToken }

const (
	defaultAllowedMimeTypes  = "audio/mp4,audio/mpeg,audio/m4a,audio/aac,audio/webm,audio/wav,audio/ogg,audio/flac"
	defaultAllowedExtensions = "mp4,mp3,m4a,aac,webm,wav,ogg,flac"
)

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		AppBaseURL:        strings.TrimRight(getEnv("APP_BASE_URL", ""), "/"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		APIRatePerSecond:  mustFloat(getEnv("API_RATE_PER_SECOND", "5")),
		APIRateBurst:      mustInt(getEnv("API_RATE_BURST", "20")),
		TrustedProxies:    splitCSV(getEnv("TRUSTED_PROXIES", "")),
		MinIOEndpoint:     getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOPublicURL:    getEnv("MINIO_PUBLIC_URL", ""),
		MinioBucketAudio:  getEnv("MINIO_BUCKET_AUDIO", "audio-storage"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		UploadMaxFileSize: mustInt64(getEnv("UPLOAD_MAX_FILE_SIZE", "10485760")),
		UploadMaxPerHour:  mustInt(getEnv("UPLOAD_MAX_PER_HOUR", "10")),
		UploadRateWindow:  mustDuration(getEnv("UPLOAD_RATE_WINDOW", "1h")),
		AllowedMimeTypes:  splitCSV(strings.ToLower(getEnv("UPLOAD_ALLOWED_MIME_TYPES", defaultAllowedMimeTypes))),
		AllowedExtensions: splitCSV(strings.ToLower(getEnv("UPLOAD_ALLOWED_EXTENSIONS", defaultAllowedExtensions))),
		RequireSignature:  strings.EqualFold(getEnv("UPLOAD_REQUIRE_SIGNATURE", "false"), "true"),
		MaintenanceToken:  getEnv("MAINTENANCE_TOKEN", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MinIOEndpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required")
	}
	if c.UploadMaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be positive")
	}
	if c.UploadMaxPerHour <= 0 {
		return fmt.Errorf("UPLOAD_MAX_PER_HOUR must be positive")
	}
	if c.UploadRateWindow <= 0 {
		return fmt.Errorf("UPLOAD_RATE_WINDOW must be a positive duration")
	}
	if len(c.AllowedExtensions) == 0 {
		return fmt.Errorf("UPLOAD_ALLOWED_EXTENSIONS must not be empty")
	}
	if c.APIRatePerSecond <= 0 {
		return fmt.Errorf("API_RATE_PER_SECOND must be a positive number")
	}
	if c.APIRateBurst <= 0 {
		return fmt.Errorf("API_RATE_BURST must be a positive integer")
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", proxy)
		}
	}
	return nil
}

func validProxy(value string) bool {
	if net.ParseIP(value) != nil {
		return true
	}
	_, _, err := net.ParseCIDR(value)
	return err == nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
