package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/openapiserver/params"
	"github.com/drblury/openapiserver/responder"
)

var (
	// ErrMissingSpec is returned by New when Config.Spec is nil.
	ErrMissingSpec = errors.New("api: openapi document is required")
	// ErrInvalidAPIKey is reported when the presented key does not match.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrUnsupportedScheme is reported for security schemes other than apiKey.
	ErrUnsupportedScheme = errors.New("unsupported security scheme")
	// ErrInvalidResponse wraps response validation failures.
	ErrInvalidResponse = errors.New("response does not match the openapi document")
)

// Controller handles one operation. The returned value is written as JSON
// with status 200 unless it is a *Response; a nil value yields 204 unless a
// *Response names another status.
type Controller func(ctx context.Context, req *Request) (any, error)

// Request is what a controller receives.
type Request struct {
	OperationID string
	Operation   *openapi3.Operation
	// Params holds the typed query parameters of the operation.
	Params     params.Values
	PathParams map[string]string
	// Body is the decoded JSON body, nil when the request had none.
	Body   any
	URL    *url.URL
	Header http.Header
	HTTP   *http.Request
	Spec   *openapi3.T
	Logger *slog.Logger
	Meta   map[string]any
}

// Response lets a controller pick the status code and headers.
type Response struct {
	Status int
	Header http.Header
	Body   any
}

// Error is a controller error with an HTTP status.
type Error struct {
	Status  int
	Message string
}

// NewError returns an *Error for status.
func NewError(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode implements the interface the responder looks for.
func (e *Error) StatusCode() int {
	return e.Status
}

// Config describes one API.
type Config struct {
	// Version is the mount prefix used by the server, e.g. "v1".
	Version string
	Spec    *openapi3.T
	// Controllers are keyed by operationId.
	Controllers map[string]Controller
	// Secret is compared with the key presented for apiKey security
	// schemes. An empty secret rejects every secured request.
	Secret string
	// APIRoot is stripped from the request path before route matching.
	APIRoot string
	// Strict turns document validation warnings into errors.
	Strict bool
	// ErrorDetails exposes controller error messages on 5xx responses.
	ErrorDetails bool
	Logger       *slog.Logger
	// Meta is handed to every controller untouched.
	Meta map[string]any
	// Responder overrides the responder built from Logger and ErrorDetails.
	Responder *responder.Responder
}
