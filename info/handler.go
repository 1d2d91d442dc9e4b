package info

import (
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/openapiserver/jsonutil"
	"github.com/drblury/openapiserver/probe"
	"github.com/drblury/openapiserver/responder"
)

// ErrNoDocument is reported by the documentation endpoints when no
// document is configured.
var ErrNoDocument = errors.New("openapi document not configured")

// VersionProvider returns the payload of the version endpoint.
type VersionProvider func() any

// DocumentProvider returns the encoded OpenAPI document.
type DocumentProvider func() ([]byte, error)

// TemplateDataProvider computes the data the documentation template is
// executed with.
type TemplateDataProvider func(r *http.Request, baseURL string) any

// Option configures a Handler.
type Option func(*Handler)

const defaultProbeTimeout = 2 * time.Second

// Handler serves documentation and health endpoints.
type Handler struct {
	*responder.Responder
	baseURL         string
	title           string
	version         VersionProvider
	document        DocumentProvider
	tmpl            *template.Template
	templateData    TemplateDataProvider
	probeTimeout    time.Duration
	livenessChecks  []probe.Func
	readinessChecks []probe.Func
}

// New builds a Handler serving Swagger UI with no probes.
func New(opts ...Option) *Handler {
	h := &Handler{
		Responder: responder.NewResponder(),
		title:     "API documentation",
		version: func() any {
			return map[string]string{}
		},
		document: func() ([]byte, error) {
			return nil, ErrNoDocument
		},
		tmpl:         templates[UISwagger],
		probeTimeout: defaultProbeTimeout,
	}
	h.templateData = h.defaultTemplateData
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// WithResponder replaces the responder used for JSON and problem responses.
func WithResponder(r *responder.Responder) Option {
	return func(h *Handler) {
		if r != nil {
			h.Responder = r
		}
	}
}

// WithBaseURL sets the prefix the documentation page loads openapi.json from.
func WithBaseURL(baseURL string) Option {
	return func(h *Handler) {
		h.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithVersion sets the provider behind the version endpoint.
func WithVersion(provider VersionProvider) Option {
	return func(h *Handler) {
		if provider != nil {
			h.version = provider
		}
	}
}

// WithDocument serves doc, encoded once per request so late edits to the
// document are visible.
func WithDocument(doc *openapi3.T) Option {
	return func(h *Handler) {
		if doc == nil {
			return
		}
		if doc.Info != nil && doc.Info.Title != "" {
			h.title = doc.Info.Title
		}
		h.document = func() ([]byte, error) {
			return jsonutil.Marshal(doc)
		}
	}
}

// WithDocumentProvider serves the bytes returned by provider.
func WithDocumentProvider(provider DocumentProvider) Option {
	return func(h *Handler) {
		if provider != nil {
			h.document = provider
		}
	}
}

// WithUI selects one of the embedded documentation viewers.
func WithUI(ui UI) Option {
	return func(h *Handler) {
		if tmpl, ok := templates[ui]; ok {
			h.tmpl = tmpl
		}
	}
}

// WithTemplate replaces the documentation page template.
func WithTemplate(tmpl *template.Template) Option {
	return func(h *Handler) {
		if tmpl != nil {
			h.tmpl = tmpl
		}
	}
}

// WithTemplateData replaces the data the documentation template receives.
func WithTemplateData(provider TemplateDataProvider) Option {
	return func(h *Handler) {
		if provider != nil {
			h.templateData = provider
		}
	}
}

// WithProbeTimeout bounds every liveness and readiness run.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(h *Handler) {
		if timeout > 0 {
			h.probeTimeout = timeout
		}
	}
}

// WithLivenessChecks sets the checks behind the healthz endpoint.
func WithLivenessChecks(checks ...probe.Func) Option {
	return func(h *Handler) {
		h.livenessChecks = filterProbes(checks)
	}
}

// WithReadinessChecks sets the checks behind the readyz endpoint.
func WithReadinessChecks(checks ...probe.Func) Option {
	return func(h *Handler) {
		h.readinessChecks = filterProbes(checks)
	}
}

func (h *Handler) defaultTemplateData(_ *http.Request, baseURL string) any {
	return TemplateData{
		Title:   h.title,
		SpecURL: baseURL + "/openapi.json",
	}
}
