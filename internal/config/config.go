package config

import (
	"log/slog"
	"time"
)

// Config holds the apiserver configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	API    APIConfig    `mapstructure:"api" validate:"required"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
}

// ServerConfig configures the listener and the middleware chain.
type ServerConfig struct {
	Addr            string          `mapstructure:"addr" validate:"required,hostname_port"`
	Origin          string          `mapstructure:"origin" validate:"required"`
	StaticFolder    string          `mapstructure:"static_folder" validate:"omitempty,dir"`
	Timeout         time.Duration   `mapstructure:"timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" validate:"gte=0"`
	LogLevel        string          `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	Compression     bool            `mapstructure:"compression"`
	DocsUI          string          `mapstructure:"docs_ui" validate:"required,oneof=swagger redoc scalar"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the per-client limiter. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" validate:"gte=0"`
	Burst int     `mapstructure:"burst" validate:"gte=0"`
}

// APIConfig describes the served API.
type APIConfig struct {
	Version string `mapstructure:"version" validate:"required,excludesall=/?# "`
	// SpecFile is an OpenAPI document in JSON or YAML. Empty serves the
	// bundled sample document.
	SpecFile     string `mapstructure:"spec_file" validate:"omitempty,file"`
	Secret       string `mapstructure:"secret"`
	Root         string `mapstructure:"root" validate:"omitempty,startswith=/"`
	Strict       bool   `mapstructure:"strict"`
	ErrorDetails bool   `mapstructure:"error_details"`
}

// MongoConfig enables the MongoDB readiness probe when URI is set.
type MongoConfig struct {
	URI            string        `mapstructure:"uri" validate:"omitempty,uri"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
}

// SlogLevel converts LogLevel, falling back to info.
func (c ServerConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
