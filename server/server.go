package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/openapiserver/api"
	"github.com/drblury/openapiserver/info"
	"github.com/drblury/openapiserver/probe"
	"github.com/drblury/openapiserver/responder"
	"github.com/drblury/openapiserver/router"
)

var (
	// ErrNoAPIs is returned by New when Config.APIs is empty.
	ErrNoAPIs = errors.New("server: at least one api is required")
	// ErrMissingVersion is returned for an API without a version.
	ErrMissingVersion = errors.New("server: api version is required")
	// ErrDuplicateVersion is returned when two APIs share a version.
	ErrDuplicateVersion = errors.New("server: duplicate api version")

	errTooManyRequests = errors.New("too many requests")
	errNoRoute         = errors.New("no route")
)

var healthRoutes = []string{"/status", "/healthz", "/readyz"}

// Server serves the configured APIs.
type Server struct {
	cfg     Config
	apis    []*api.API
	resp    *responder.Responder
	handler http.Handler
	log     *slog.Logger
}

// New builds every API of cfg and mounts it.
func New(cfg Config) (*Server, error) {
	if len(cfg.APIs) == 0 {
		return nil, ErrNoAPIs
	}
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:  cfg,
		resp: responder.NewResponder(responder.WithLogger(cfg.Logger)),
		log:  cfg.Logger,
	}

	mux := http.NewServeMux()
	seen := make(map[string]bool, len(cfg.APIs))
	corsHeaders := []string{"Content-Type", "Authorization", "X-Request-Id"}

	for _, apiCfg := range cfg.APIs {
		version := strings.Trim(apiCfg.Version, "/")
		if version == "" {
			return nil, ErrMissingVersion
		}
		if seen[version] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVersion, version)
		}
		seen[version] = true

		apiCfg.Version = version
		if apiCfg.Logger == nil {
			apiCfg.Logger = cfg.Logger
		}
		a, err := api.New(apiCfg)
		if err != nil {
			return nil, fmt.Errorf("server: api %s: %w", version, err)
		}
		s.apis = append(s.apis, a)
		corsHeaders = append(corsHeaders, apiKeyHeaders(a)...)

		s.mountAPI(mux, a)
	}

	health := info.New(
		info.WithResponder(s.resp),
		info.WithVersion(s.versionInfo),
		info.WithLivenessChecks(cfg.LivenessChecks...),
		info.WithReadinessChecks(append(slices.Clone(cfg.ReadinessChecks), s.ReadinessProbe())...),
	)
	mux.HandleFunc("GET /status", health.GetStatus)
	mux.HandleFunc("GET /healthz", health.GetHealthz)
	mux.HandleFunc("GET /readyz", health.GetReadyz)
	mux.HandleFunc("GET /version", health.GetVersion)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.resp.HandleNotFoundError(w, r, errNoRoute)
	})

	var handler http.Handler = mux
	if cfg.StaticFolder != "" {
		handler = staticFirst(cfg.StaticFolder, mux)
	}

	s.handler = router.New(handler,
		router.WithLogger(cfg.Logger),
		router.WithConfig(router.Config{
			Timeout: cfg.Timeout,
			CORS: router.CORSConfig{
				Origins: []string{cfg.Origin},
				Methods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
				Headers: dedupe(corsHeaders),
			},
			Secure: router.SecureConfig{
				CrossOriginResourcePolicy: cfg.crossOriginResourcePolicy(),
				ContentSecurityPolicy:     cfg.ContentSecurityPolicy,
				HSTSMaxAge:                cfg.HSTSMaxAge,
			},
			Compression:     router.CompressionConfig{Enabled: cfg.Compression},
			RateLimit:       cfg.RateLimit,
			QuietdownRoutes: healthRoutes,
			HideHeaders:     []string{"Authorization", "Cookie"},
		}),
		router.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.resp.HandleAPIError(w, r, http.StatusTooManyRequests, errTooManyRequests, "rate limited")
		}),
		router.WithoutOpenAPIValidation(),
	)
	return s, nil
}

func (s *Server) mountAPI(mux *http.ServeMux, a *api.API) {
	prefix := "/" + a.Version()

	if !s.cfg.DisableDocs {
		docs := info.New(
			info.WithResponder(s.resp),
			info.WithBaseURL(prefix),
			info.WithDocument(publishedDocument(a.Spec(), prefix)),
			info.WithUI(s.cfg.DocsUI),
		)
		mux.HandleFunc("GET "+prefix+"/openapi.json", docs.GetOpenAPIJSON)
		mux.HandleFunc("GET "+prefix+"/docs", docs.GetOpenAPIHTML)
	}
	mux.Handle(prefix+"/", http.StripPrefix(prefix, a))
	s.log.Info("api mounted", "version", a.Version(), "prefix", prefix+"/", "operations", len(a.OperationIDs()))
}

// publishedDocument points the served document at its mount prefix unless
// it declares servers of its own.
func publishedDocument(doc *openapi3.T, prefix string) *openapi3.T {
	if len(doc.Servers) > 0 {
		return doc
	}
	published := *doc
	published.Servers = openapi3.Servers{{URL: prefix}}
	return &published
}

// staticFirst answers GET and HEAD requests for files under dir before any
// route sees them. Everything else falls through to next.
func staticFirst(dir string, next http.Handler) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if (r.Method == http.MethodGet || r.Method == http.MethodHead) && hasStaticFile(root, r.URL.Path) {
			files.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// hasStaticFile reports whether name is a file in root, or a directory
// holding an index.html.
func hasStaticFile(root http.FileSystem, name string) bool {
	name = path.Clean("/" + name)
	f, err := root.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		return true
	}
	index, err := root.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	_ = index.Close()
	return true
}

func (s *Server) versionInfo() any {
	apis := make(map[string]string, len(s.apis))
	for _, a := range s.apis {
		if doc := a.Spec(); doc.Info != nil {
			apis[a.Version()] = doc.Info.Version
		}
	}

	payload := make(map[string]any, len(s.cfg.Build)+1)
	for k, v := range s.cfg.Build {
		payload[k] = v
	}
	payload["apis"] = apis
	return payload
}

// Handler returns the assembled handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// APIs returns the mounted APIs in configuration order.
func (s *Server) APIs() []*api.API {
	return s.apis
}

// ReadinessProbe reports whether every mounted document validates. The
// readyz endpoint runs it alongside the configured checks.
func (s *Server) ReadinessProbe() probe.Func {
	checks := make([]probe.Func, 0, len(s.apis))
	for _, a := range s.apis {
		checks = append(checks, probe.NewSpecProbe(a.Spec()))
	}
	return func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("server shutting down", "timeout", s.cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

// apiKeyHeaders lists the header names of the document's apiKey schemes so
// that browsers may send them cross-origin.
func apiKeyHeaders(a *api.API) []string {
	doc := a.Spec()
	if doc.Components == nil {
		return nil
	}

	var headers []string
	for _, ref := range doc.Components.SecuritySchemes {
		if ref == nil || ref.Value == nil {
			continue
		}
		if scheme := ref.Value; scheme.Type == "apiKey" && scheme.In == "header" && scheme.Name != "" {
			headers = append(headers, scheme.Name)
		}
	}
	sort.Strings(headers)
	return headers
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := http.CanonicalHeaderKey(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
