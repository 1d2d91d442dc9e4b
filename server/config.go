package server

import (
	"log/slog"
	"time"

	"github.com/drblury/openapiserver/api"
	"github.com/drblury/openapiserver/info"
	"github.com/drblury/openapiserver/probe"
	"github.com/drblury/openapiserver/router"
)

const (
	defaultOrigin          = "*"
	defaultTimeout         = 30 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Config describes the server.
type Config struct {
	APIs []api.Config
	// Origin is the CORS origin. "*" also relaxes the
	// Cross-Origin-Resource-Policy header to cross-origin.
	Origin string
	// StaticFolder holds files served ahead of every route. Paths with no
	// matching file fall through to the APIs.
	StaticFolder string
	// Timeout bounds every request. Zero selects 30s, a negative value
	// disables it.
	Timeout     time.Duration
	Compression bool
	RateLimit   router.RateLimitConfig
	// DisableDocs drops the openapi.json and docs endpoints.
	DisableDocs bool
	DocsUI      info.UI
	// ContentSecurityPolicy is sent verbatim when set. The docs pages load
	// their viewers from public CDNs, so a strict policy breaks them.
	ContentSecurityPolicy string
	HSTSMaxAge            int
	LivenessChecks        []probe.Func
	ReadinessChecks       []probe.Func
	// Build is merged into the version endpoint's payload.
	Build           map[string]string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Origin == "" {
		c.Origin = defaultOrigin
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.DocsUI == "" {
		c.DocsUI = info.UISwagger
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// crossOriginResourcePolicy mirrors the CORS origin: resources may be
// embedded anywhere only when any origin may call the API.
func (c Config) crossOriginResourcePolicy() string {
	if c.Origin == "*" {
		return "cross-origin"
	}
	return "same-origin"
}
