package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/openapiserver/responder"
)

func TestNewAllowsMiddlewareOverride(t *testing.T) {
	var order []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	mux := New(handler, WithMiddlewareChain(
		recordingMiddleware("one", &order),
		recordingMiddleware("two", &order),
	))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	expected := []string{"one-before", "two-before", "handler", "two-after", "one-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v, want %v", order, expected)
	}
	if rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusTeapot)
	}
	if rr.Header().Get("X-Content-Type-Options") != "" {
		t.Fatal("expected default middlewares to be replaced by the override chain")
	}
}

func TestNewSupportsPrependAndAppendMiddlewares(t *testing.T) {
	var order []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithoutOpenAPIValidation(),
		WithoutCORSMiddleware(),
		WithoutTimeoutMiddleware(),
		WithoutLoggingMiddleware(),
		WithoutSecureHeaders(),
		WithMiddlewares(recordingMiddleware("outer", &order)),
		WithTrailingMiddlewares(recordingMiddleware("inner", &order)),
	)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	expected := []string{"outer-before", "inner-before", "handler", "inner-after", "outer-after"}
	if !reflect.DeepEqual(order, expected) {
		t.Fatalf("unexpected middleware order: got %v want %v", order, expected)
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected response code: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestNewAppliesCORSEnforcementFromConfig(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux := New(
		handler,
		WithConfigMutator(func(cfg *Config) {
			cfg.CORS = CORSConfig{
				Origins:          []string{"https://example.com"},
				Methods:          []string{http.MethodGet, http.MethodPost},
				Headers:          []string{"Content-Type", "X-Api-Key"},
				AllowCredentials: true,
			}
		}),
	)

	req := httptest.NewRequest(http.MethodOptions, "/v1/items", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status code: got %d want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("unexpected access-control-allow-origin: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST" {
		t.Fatalf("unexpected access-control-allow-methods: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type,X-Api-Key" {
		t.Fatalf("unexpected access-control-allow-headers: got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("unexpected access-control-allow-credentials: got %q", got)
	}
}

func TestWithoutCORSMiddlewareSkipsHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithConfigMutator(func(cfg *Config) {
			cfg.CORS = CORSConfig{Origins: []string{"*"}}
		}),
		WithoutCORSMiddleware(),
	)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("expected CORS headers to be skipped when middleware disabled")
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status code: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	t.Run("defaults to same-origin", func(t *testing.T) {
		rr := httptest.NewRecorder()
		New(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rr.Header().Get("Cross-Origin-Resource-Policy"); got != "same-origin" {
			t.Fatalf("unexpected cross-origin-resource-policy: %q", got)
		}
		if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Fatalf("unexpected x-content-type-options: %q", got)
		}
		if rr.Header().Get("Strict-Transport-Security") != "" {
			t.Fatal("expected HSTS to be off by default")
		}
	})

	t.Run("honours config", func(t *testing.T) {
		mux := New(handler, WithConfig(Config{Secure: SecureConfig{
			CrossOriginResourcePolicy: "cross-origin",
			ContentSecurityPolicy:     "require-trusted-types-for 'script'",
			HSTSMaxAge:                60,
		}}))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if got := rr.Header().Get("Cross-Origin-Resource-Policy"); got != "cross-origin" {
			t.Fatalf("unexpected cross-origin-resource-policy: %q", got)
		}
		if got := rr.Header().Get("Content-Security-Policy"); got != "require-trusted-types-for 'script'" {
			t.Fatalf("unexpected content-security-policy: %q", got)
		}
		if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=60; includeSubDomains" {
			t.Fatalf("unexpected strict-transport-security: %q", got)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = responder.TraceIDFromContext(r.Context())
	})

	t.Run("keeps the client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rr := httptest.NewRecorder()
		New(handler).ServeHTTP(rr, req)

		if seen != "abc-123" || rr.Header().Get("X-Request-Id") != "abc-123" {
			t.Fatalf("expected request id abc-123, got context %q header %q", seen, rr.Header().Get("X-Request-Id"))
		}
	})

	t.Run("mints an id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		New(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if len(seen) != 26 {
			t.Fatalf("expected a ULID request id, got %q", seen)
		}
		if rr.Header().Get("X-Request-Id") != seen {
			t.Fatalf("expected response header to echo %q", seen)
		}
	})
}

func TestRateLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithConfig(Config{RateLimit: RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}}),
		WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}),
	)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	expected := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	if !reflect.DeepEqual(codes, expected) {
		t.Fatalf("unexpected status codes: got %v want %v", codes, expected)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.9.9.9:5555"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, other)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected a separate bucket per client, got %d", rr.Code)
	}
}

func TestCompression(t *testing.T) {
	body := strings.Repeat(`{"name":"item"},`, 200)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	mux := New(handler, WithConfig(Config{Compression: CompressionConfig{Enabled: true}}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if got := rr.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("expected gzip content encoding, got %q", got)
	}
	if rr.Body.Len() >= len(body) {
		t.Fatalf("expected compressed body to be smaller than %d bytes, got %d", len(body), rr.Body.Len())
	}
}

func TestTimeoutMiddlewareCanBeDisabled(t *testing.T) {
	longHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	withTimeout := New(longHandler, WithConfig(Config{Timeout: 1 * time.Millisecond}))
	withoutTimeout := New(longHandler, WithConfig(Config{Timeout: 1 * time.Millisecond}), WithoutTimeoutMiddleware())

	rrTimeout := httptest.NewRecorder()
	withTimeout.ServeHTTP(rrTimeout, httptest.NewRequest(http.MethodGet, "/", nil))
	if rrTimeout.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected timeout handler to fire, got %d", rrTimeout.Code)
	}

	rrNoTimeout := httptest.NewRecorder()
	withoutTimeout.ServeHTTP(rrNoTimeout, httptest.NewRequest(http.MethodGet, "/", nil))
	if rrNoTimeout.Code != http.StatusOK {
		t.Fatalf("expected handler to complete when timeout disabled, got %d", rrNoTimeout.Code)
	}
}

const securedSpec = `
openapi: 3.0.3
info:
  title: secured
  version: 1.0.0
components:
  securitySchemes:
    apiKey:
      type: apiKey
      in: header
      name: x-api-key
security:
  - apiKey: []
paths:
  /items:
    get:
      operationId: listItems
      parameters:
        - name: page
          in: query
          schema:
            type: integer
            minimum: 0
      responses:
        "200":
          description: ok
`

func TestOpenAPIValidation(t *testing.T) {
	doc, err := openapi3.NewLoader().LoadFromData([]byte(securedSpec))
	if err != nil {
		t.Fatalf("failed to load spec: %v", err)
	}

	errMissingKey := errors.New("missing api key")
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux := New(
		handler,
		WithSwagger(doc),
		WithAuthenticationFunc(func(_ context.Context, in *openapi3filter.AuthenticationInput) error {
			if in.RequestValidationInput.Request.Header.Get("x-api-key") != "secret" {
				return errMissingKey
			}
			return nil
		}),
		WithValidationErrorHandler(func(_ context.Context, err error, w http.ResponseWriter, r *http.Request, opts oapiMW.ErrorHandlerOpts) {
			message, _, _ := strings.Cut(err.Error(), "\n")
			w.Header().Set("X-Validation", message)
			w.Header().Set("X-Rejected-Path", r.URL.Path)
			w.WriteHeader(opts.StatusCode)
		}),
	)

	tests := []struct {
		name   string
		target string
		key    string
		want   int
	}{
		{name: "valid request", target: "/items?page=1", key: "secret", want: http.StatusNoContent},
		{name: "missing key", target: "/items?page=1", want: http.StatusUnauthorized},
		{name: "malformed query", target: "/items?page=abc", key: "secret", want: http.StatusBadRequest},
		{name: "below minimum", target: "/items?page=-1", key: "secret", want: http.StatusBadRequest},
		{name: "unknown route", target: "/nope", key: "secret", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.key != "" {
				req.Header.Set("x-api-key", tt.key)
			}
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected status %d, got %d (%s)", tt.want, rr.Code, rr.Header().Get("X-Validation"))
			}
			if tt.want != http.StatusNoContent && rr.Header().Get("X-Rejected-Path") != req.URL.Path {
				t.Fatalf("expected rejected request %q to reach the error handler, got %q", req.URL.Path, rr.Header().Get("X-Rejected-Path"))
			}
		})
	}
}

func TestOpenAPIValidationKeepsDocumentServers(t *testing.T) {
	doc, err := openapi3.NewLoader().LoadFromData([]byte(securedSpec))
	if err != nil {
		t.Fatalf("failed to load spec: %v", err)
	}
	doc.Servers = openapi3.Servers{{URL: "https://api.example.com/v1"}}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux := New(handler, WithSwagger(doc))

	req := httptest.NewRequest(http.MethodGet, "/items?page=1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected validation to ignore server hosts, got %d", rr.Code)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://api.example.com/v1" {
		t.Fatalf("expected document servers to be left alone, got %+v", doc.Servers)
	}
}

func TestNewPanicsWhenHandlerNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when handler is nil")
		}
	}()

	New(nil)
}

func recordingMiddleware(label string, sink *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*sink = append(*sink, label+"-before")
			next.ServeHTTP(w, r)
			*sink = append(*sink, label+"-after")
		})
	}
}
