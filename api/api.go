package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/drblury/openapiserver/params"
	"github.com/drblury/openapiserver/responder"
	"github.com/drblury/openapiserver/router"
)

// API serves one OpenAPI document. It is safe for concurrent use.
type API struct {
	version    string
	doc        *openapi3.T
	routes     routers.Router
	operations map[*openapi3.Operation]*operation
	resp       *responder.Responder
	log        *slog.Logger
	secret     string
	meta       map[string]any
	handler    http.Handler
}

type operation struct {
	id         string
	method     string
	path       string
	spec       *openapi3.Operation
	query      []params.ParameterSpec
	controller Controller
}

// New validates cfg and builds the handler for its document.
func New(cfg Config) (*API, error) {
	if cfg.Spec == nil {
		return nil, ErrMissingSpec
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Version != "" {
		logger = logger.With("api", cfg.Version)
	}

	doc := cfg.Spec

	if err := doc.Validate(context.Background()); err != nil {
		if cfg.Strict {
			return nil, fmt.Errorf("api: invalid openapi document: %w", err)
		}
		logger.Warn("openapi document does not validate", "error", err)
	}

	// Routing matches paths only. The document keeps its servers for
	// publishing.
	routed := *doc
	routed.Servers = nil

	routes, err := gorillamux.NewRouter(&routed)
	if err != nil {
		return nil, fmt.Errorf("api: build routes: %w", err)
	}

	resp := cfg.Responder
	if resp == nil {
		resp = responder.NewResponder(
			responder.WithLogger(logger),
			responder.WithErrorDetails(cfg.ErrorDetails),
		)
	}

	a := &API{
		version: cfg.Version,
		doc:     doc,
		routes:  routes,
		resp:    resp,
		log:     logger,
		secret:  cfg.Secret,
		meta:    cfg.Meta,
	}
	a.operations = collectOperations(doc, cfg.Controllers, logger)

	var handler http.Handler = router.New(
		http.HandlerFunc(a.dispatch),
		router.WithLogger(logger),
		router.WithSwagger(&routed),
		router.WithAuthenticationFunc(a.authenticate),
		router.WithValidationErrorHandler(a.validationFailed),
		router.WithoutCORSMiddleware(),
		router.WithoutSecureHeaders(),
		router.WithoutTimeoutMiddleware(),
		router.WithoutLoggingMiddleware(),
	)
	if root := strings.TrimRight(cfg.APIRoot, "/"); root != "" {
		handler = http.StripPrefix(root, handler)
	}
	a.handler = handler

	return a, nil
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// Version returns the configured mount version.
func (a *API) Version() string {
	return a.version
}

// Spec returns the document the API serves, as configured.
func (a *API) Spec() *openapi3.T {
	return a.doc
}

// OperationIDs lists the operationIds of the document.
func (a *API) OperationIDs() []string {
	return OperationIDs(a.doc)
}

// OperationIDs returns the sorted, de-duplicated operationIds of doc.
func OperationIDs(doc *openapi3.T) []string {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			if op != nil && op.OperationID != "" {
				seen[op.OperationID] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func collectOperations(doc *openapi3.T, controllers map[string]Controller, logger *slog.Logger) map[*openapi3.Operation]*operation {
	ops := make(map[*openapi3.Operation]*operation)
	used := make(map[string]bool, len(controllers))

	for path, item := range doc.Paths.Map() {
		for method, spec := range item.Operations() {
			if spec == nil {
				continue
			}
			op := &operation{
				id:     spec.OperationID,
				method: method,
				path:   path,
				spec:   spec,
				query:  params.FromOperation(item, spec, params.InQuery),
			}
			if spec.OperationID != "" {
				if c, ok := controllers[spec.OperationID]; ok && c != nil {
					op.controller = c
					used[spec.OperationID] = true
				}
			}
			if op.controller == nil {
				logger.Debug("operation served by mock", "operationId", op.id, "method", method, "path", path)
			}
			ops[spec] = op
		}
	}

	for id := range controllers {
		if !used[id] {
			logger.Warn("controller has no matching operation", "operationId", id)
		}
	}
	return ops
}

func (a *API) lookup(route *routers.Route) (*operation, error) {
	if route == nil || route.Operation == nil {
		return nil, routers.ErrPathNotFound
	}
	op, ok := a.operations[route.Operation]
	if !ok {
		return nil, errors.New("operation not registered")
	}
	return op, nil
}
