package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"

	"github.com/drblury/openapiserver/responder"
)

const requestIDHeader = "X-Request-Id"

// requestIDMiddleware propagates X-Request-Id, minting a ULID when the client
// sent none, and stores it for the responder's trace ids.
func requestIDMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if id == "" || len(id) > 128 {
				id = responder.NewTraceID()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(responder.ContextWithTraceID(r.Context(), id)))
		})
	}
}

func loggingMiddleware(logger *slog.Logger, quietdownRoutes []string, hideHeaders []string) Middleware {
	logger.With(
		"QuietdownRoutes", quietdownRoutes,
		"HideHeaders", hideHeaders,
	).Debug("Config for logging middleware")

	quietRoutesCopy := cloneStrings(quietdownRoutes)
	redactedCopy := cloneStrings(hideHeaders)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldQuietRoute(r.URL.Path, quietRoutesCopy) {
				next.ServeHTTP(w, r)
				return
			}

			headers := cloneHeaders(r.Header)
			redactHeaders(headers, redactedCopy)

			attrs := []any{
				"Path", r.URL.Path,
				"Method", r.Method,
				"Header", headers,
			}
			if r.ContentLength > 0 {
				attrs = append(attrs, "ContentLength", r.ContentLength)
			}
			if id, ok := responder.TraceIDFromContext(r.Context()); ok {
				attrs = append(attrs, "RequestID", id)
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			attrs = append(attrs, "Status", rec.status, "Duration", time.Since(start))
			logger.With(attrs...).DebugContext(r.Context(), "Request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// corsMiddleware adds CORS headers based on the provided configuration.
func corsMiddleware(cfg CORSConfig) Middleware {
	headersCopy := cloneStrings(cfg.Headers)
	methodsCopy := cloneStrings(cfg.Methods)
	originsCopy := cloneStrings(cfg.Origins)

	return func(next http.Handler) http.Handler {
		if len(originsCopy) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if allowedOrigin(origin, originsCopy) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(methodsCopy, ","))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(headersCopy, ","))
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// secureMiddleware writes the usual hardening headers.
func secureMiddleware(cfg SecureConfig) Middleware {
	corp := cfg.CrossOriginResourcePolicy
	if corp == "" {
		corp = "same-origin"
	}
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cross-Origin-Resource-Policy", corp)
			h.Set("Cross-Origin-Opener-Policy", "same-origin")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// compressionMiddleware gzips responses through gzhttp. An invalid level is
// logged and leaves responses uncompressed.
func compressionMiddleware(cfg CompressionConfig, logger *slog.Logger) Middleware {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	minSize := cfg.MinSize
	if minSize <= 0 {
		minSize = gzhttp.DefaultMinSize
	}

	wrap, err := gzhttp.NewWrapper(gzhttp.CompressionLevel(level), gzhttp.MinSize(minSize))
	if err != nil {
		if logger != nil {
			logger.Warn("compression disabled", "error", err)
		}
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return wrap(next)
	}
}

// timeoutMiddleware adds timeout handling to requests.
func timeoutMiddleware(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Timeout")
	}
}

func allowedOrigin(origin string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == "*" || candidate == origin {
			return true
		}
	}

	return false
}

func shouldQuietRoute(path string, quietdownRoutes []string) bool {
	for _, quietPath := range quietdownRoutes {
		if path == quietPath {
			return true
		}
	}

	return false
}

func cloneHeaders(src http.Header) http.Header {
	headers := make(http.Header, len(src))
	for k, v := range src {
		copied := make([]string, len(v))
		copy(copied, v)
		headers[k] = copied
	}

	return headers
}

func redactHeaders(headers http.Header, hideHeaders []string) {
	for _, header := range hideHeaders {
		canonical := http.CanonicalHeaderKey(header)
		values, exists := headers[canonical]
		if !exists {
			continue
		}

		redactedLen := 0
		for _, value := range values {
			redactedLen += len(value)
		}

		headers[canonical] = []string{fmt.Sprintf("[REDACTED - %d bytes]", redactedLen)}
	}
}
