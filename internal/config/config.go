// Package config loads process configuration from the environment.
// Values are read once at startup, validated, and treated as read-only
// afterwards.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Sink     SinkConfig
	Notify   NotifyConfig
	Database DatabaseConfig
	Security SecurityConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on. PORT is honoured for platforms that set it.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"3000"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a whole request, every sink call included. A
	// request that runs out answers 504 "Request timed out" (0 disables).
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"0s"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the largest accepted request body in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// FormField is the multipart field carrying the file
	FormField string `env:"UPLOAD_FORM_FIELD" default:"sample"`

	// RowLimit is the maximum number of data rows per upload
	RowLimit int `env:"UPLOAD_ROW_LIMIT" default:"1000"`

	// RowLimitMode is "inclusive" (accept RowLimit rows) or "exclusive" (accept RowLimit-1)
	RowLimitMode string `env:"UPLOAD_ROW_LIMIT_MODE" default:"inclusive"`

	// MaxConcurrent is the number of uploads processed at once
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a free upload slot
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// SinkConfig describes the downstream ingestion endpoint.
type SinkConfig struct {
	URL string `env:"SINK_URL" envAlt:"DOWNSTREAM_URL" required:"true"`

	// Timeout per record send (0 means none)
	Timeout time.Duration `env:"SINK_TIMEOUT" default:"0s"`
}

// NotifyConfig holds SMTP settings for outcome notifications.
// When Enabled is false, notifications are written to the log instead.
type NotifyConfig struct {
	Enabled  bool   `env:"NOTIFY_ENABLED" default:"false"`
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" default:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"NOTIFY_FROM"`
	To       string `env:"NOTIFY_TO"`
}

// DatabaseConfig holds the optional outcome audit database.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string; empty disables auditing
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// SecurityConfig holds proxy and browser-facing settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs allowed to set X-Real-IP
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// CORSAllowedOrigins is a comma-separated list of origins; empty disables CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Addr returns the SMTP server address in host:port form.
func (c *NotifyConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
