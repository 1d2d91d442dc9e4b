package responder

import (
	"log/slog"
	"net/http"
)

const (
	jsonContentType    = "application/json"
	problemContentType = "application/problem+json"
	statusDocBaseURL   = "https://httpstatuses.io"
)

// ErrorClassifierFunc maps an error returned by a controller onto an HTTP
// status. handled=false lets HandleErrors fall back to a 500.
type ErrorClassifierFunc func(err error) (status int, handled bool)

// ResponderOption configures a Responder.
type ResponderOption func(*Responder)

type statusMeta struct {
	typeURI  string
	title    string
	logLevel slog.Level
	logMsg   string
}

// StatusMetadata customises how a status code is logged and titled.
type StatusMetadata struct {
	TypeURI  string
	Title    string
	LogLevel slog.Level
	LogMsg   string
}

// Responder renders JSON payloads and problem documents for the API layer
// and logs every problem it emits.
type Responder struct {
	log             *slog.Logger
	statusMetadata  map[int]statusMeta
	errorClassifier ErrorClassifierFunc
	errorDetails    bool
}

// NewResponder constructs a Responder using slog.Default and the built-in
// status metadata. Error details are exposed unless WithErrorDetails(false)
// is given.
func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log:            slog.Default(),
		statusMetadata: defaultStatusMetadata(),
		errorDetails:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger sets the logger used for problem records.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

// WithErrorClassifier installs the classifier consulted by HandleErrors.
func WithErrorClassifier(classifier ErrorClassifierFunc) ResponderOption {
	return func(r *Responder) {
		r.errorClassifier = classifier
	}
}

// WithErrorDetails controls whether the error text of 5xx problems reaches
// the client. When disabled the detail falls back to the status title; the
// full error is still logged.
func WithErrorDetails(enabled bool) ResponderOption {
	return func(r *Responder) {
		r.errorDetails = enabled
	}
}

// WithStatusMetadata overrides the metadata for one status code.
func WithStatusMetadata(status int, meta StatusMetadata) ResponderOption {
	return func(r *Responder) {
		if r.statusMetadata == nil {
			r.statusMetadata = make(map[int]statusMeta)
		}
		r.statusMetadata[status] = normalizeStatusMeta(status, statusMeta{
			typeURI:  meta.TypeURI,
			title:    meta.Title,
			logLevel: meta.LogLevel,
			logMsg:   meta.LogMsg,
		})
	}
}

// Logger returns the logger used by the responder.
func (r *Responder) Logger() *slog.Logger {
	return r.logger()
}

func (r *Responder) logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

func (r *Responder) classifyError(err error) (int, bool) {
	if r.errorClassifier == nil {
		return 0, false
	}
	return r.errorClassifier(err)
}

func defaultStatusMetadata() map[int]statusMeta {
	warn := func(status int, msg string) statusMeta {
		return statusMeta{title: http.StatusText(status), logLevel: slog.LevelWarn, logMsg: msg}
	}
	return map[int]statusMeta{
		http.StatusBadRequest:          warn(http.StatusBadRequest, "Request validation failed"),
		http.StatusUnauthorized:        warn(http.StatusUnauthorized, "Unauthorized"),
		http.StatusNotFound:            warn(http.StatusNotFound, "Route not found"),
		http.StatusMethodNotAllowed:    warn(http.StatusMethodNotAllowed, "Method not allowed"),
		http.StatusTooManyRequests:     warn(http.StatusTooManyRequests, "Rate limited"),
		http.StatusInternalServerError: {title: http.StatusText(http.StatusInternalServerError), logLevel: slog.LevelError, logMsg: "Internal Server Error"},
		http.StatusBadGateway:          {title: http.StatusText(http.StatusBadGateway), logLevel: slog.LevelError, logMsg: "Response validation failed"},
		http.StatusServiceUnavailable:  {title: http.StatusText(http.StatusServiceUnavailable), logLevel: slog.LevelError, logMsg: "Service unavailable"},
	}
}
