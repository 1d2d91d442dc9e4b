package responder

import (
	"errors"
	"net/http"

	"github.com/drblury/openapiserver/jsonutil"
)

// HandleAPIError writes a problem document for status and logs it. A nil
// error is a no-op.
func (r *Responder) HandleAPIError(w http.ResponseWriter, req *http.Request, status int, err error, logMsg ...string) {
	if err == nil {
		return
	}

	meta := r.statusMetaFor(status)
	problem := r.buildProblemDetails(req, status, err, meta)
	r.logProblem(req, meta, err, problem.TraceID, status, logMsg)
	r.respondWithJSON(w, req, status, problem, problemContentType)
}

// HandleInternalServerError reports a 500.
func (r *Responder) HandleInternalServerError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusInternalServerError, err, logMsg...)
}

// HandleBadRequestError reports a 400.
func (r *Responder) HandleBadRequestError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusBadRequest, err, logMsg...)
}

// HandleUnauthorizedError reports a 401.
func (r *Responder) HandleUnauthorizedError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusUnauthorized, err, logMsg...)
}

// HandleNotFoundError reports a 404.
func (r *Responder) HandleNotFoundError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusNotFound, err, logMsg...)
}

// RespondWithJSON encodes v and writes it with status.
func (r *Responder) RespondWithJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	r.respondWithJSON(w, req, status, v, jsonContentType)
}

// RespondWithBody writes an already encoded body. An empty contentType
// defaults to application/json.
func (r *Responder) RespondWithBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	if w == nil {
		return
	}
	r.writeResponse(w, status, resolveContentType(contentType, jsonContentType), body)
}

// HandleErrors picks the status for err: the classifier first, then a
// StatusCode() method on the error chain, then 500.
func (r *Responder) HandleErrors(w http.ResponseWriter, req *http.Request, err error, msgs ...string) {
	if err == nil {
		return
	}

	if status, handled := r.classifyError(err); handled {
		r.HandleAPIError(w, req, status, err, msgs...)
		return
	}

	var coder interface{ StatusCode() int }
	if errors.As(err, &coder) {
		if status := coder.StatusCode(); status >= http.StatusBadRequest {
			r.HandleAPIError(w, req, status, err, msgs...)
			return
		}
	}

	r.HandleInternalServerError(w, req, err, msgs...)
}

func (r *Responder) respondWithJSON(w http.ResponseWriter, req *http.Request, status int, payload any, contentType string) {
	if w == nil {
		return
	}

	body, err := MarshalPayload(payload)
	if err != nil {
		r.logger().ErrorContext(requestContext(req), "failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.writeResponse(w, status, resolveContentType(contentType, jsonContentType), body)
}

// MarshalPayload encodes payload the way the responder writes it, with a
// trailing newline.
func MarshalPayload(payload any) ([]byte, error) {
	data, err := jsonutil.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

func (r *Responder) writeResponse(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger().Error("failed to write response", "error", err)
	}
}

func resolveContentType(provided, fallback string) string {
	if provided == "" {
		return fallback
	}
	return provided
}
