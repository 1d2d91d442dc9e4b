package router

import "time"

// Config carries the settings of the default middlewares.
type Config struct {
	Timeout         time.Duration
	CORS            CORSConfig
	Secure          SecureConfig
	Compression     CompressionConfig
	RateLimit       RateLimitConfig
	QuietdownRoutes []string
	HideHeaders     []string
}

// CORSConfig enables CORS when Origins is not empty. "*" allows any origin.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

// SecureConfig sets the security headers written on every response.
// CrossOriginResourcePolicy defaults to "same-origin"; the other empty
// fields are skipped.
type SecureConfig struct {
	CrossOriginResourcePolicy string
	ContentSecurityPolicy     string
	HSTSMaxAge                int
}

// CompressionConfig enables gzip when Enabled is set.
type CompressionConfig struct {
	Enabled bool
	Level   int
	MinSize int
}

// RateLimitConfig enables a per-client token bucket when RequestsPerSecond
// is positive.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	MaxIdle           time.Duration
}
