// Package config provides server configuration loaded from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/typed-rpc/pkg/commsutil"
)

const logPrefix = "config:LoadConfig"

// Config holds typed-rpc server configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL     string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName    string `envconfig:"SERVICE_NAME" default:"typed-rpc"`
	COMMSEnabled bool   `envconfig:"COMMS_ENABLED" default:"true"`

	// Subject overrides (empty = derive from APP_NAME)
	CallSubject        string `envconfig:"RPC_CALL_SUBJECT"`
	SchemaSubject      string `envconfig:"RPC_SCHEMA_SUBJECT"`
	SchemaEventSubject string `envconfig:"RPC_SCHEMA_EVENT_SUBJECT"`

	RequestTimeout time.Duration `envconfig:"RPC_REQUEST_TIMEOUT" default:"25s"`
	MaxBodyBytes   int64         `envconfig:"RPC_MAX_BODY_BYTES" default:"1048576"`
	ExposeAppInfo  bool          `envconfig:"RPC_EXPOSE_APP_INFO" default:"true"`

	// App metadata published in the schema document
	AppName        string `envconfig:"APP_NAME" default:"typed-rpc"`
	AppVersion     string `envconfig:"APP_VERSION" default:"0.1.0"`
	AppDescription string `envconfig:"APP_DESCRIPTION"`

	// Database (empty = in-memory users store)
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBMaxConns     int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	EnsureDatabase bool   `envconfig:"DB_ENSURE" default:"false"`

	// HTTP surface (RPC_HTTP_ADDR preferred, e.g. "0.0.0.0:8080")
	HTTPAddr           string        `envconfig:"RPC_HTTP_ADDR"`
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%s - %w", logPrefix, err)
	}
	return &c, nil
}

// ValidateForServe checks required config when running the server.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateApp(); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - RPC_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%s - RPC_MAX_BODY_BYTES must be positive", logPrefix)
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("%s - DB_MAX_CONNS must be positive", logPrefix)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%s - LOG_LEVEL %q is not one of debug, info, warn, error", logPrefix, c.LogLevel)
	}
	return nil
}

// ValidateApp checks the app metadata, which is all the schema command needs.
func (c *Config) ValidateApp() error {
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("%s - APP_NAME is required", logPrefix)
	}
	if _, err := semver.NewVersion(c.AppVersion); err != nil {
		return fmt.Errorf("%s - APP_VERSION %q is not a semantic version: %w", logPrefix, c.AppVersion, err)
	}
	return nil
}

// ResolvedCallSubject returns the call subject, derived from the app name
// unless overridden.
func (c *Config) ResolvedCallSubject() string {
	if c.CallSubject != "" {
		return c.CallSubject
	}
	return commsutil.BuildCallSubject(c.AppName)
}

// ResolvedSchemaSubject returns the schema request subject.
func (c *Config) ResolvedSchemaSubject() string {
	if c.SchemaSubject != "" {
		return c.SchemaSubject
	}
	return commsutil.BuildSchemaSubject(c.AppName)
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
