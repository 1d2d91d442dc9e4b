package responder

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/drblury/openapiserver/jsonutil"
)

// ErrEmptyBody is returned by DecodeBody when the request carries no body.
var ErrEmptyBody = errors.New("request body is required")

// ReadRequestBody decodes the JSON body into v, answering 400 on failure.
func (r *Responder) ReadRequestBody(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := DecodeBody(req, v); err != nil {
		r.HandleBadRequestError(w, req, err, "failed to parse request body")
		return false
	}
	return true
}

// DecodeBody decodes the JSON body of req into v.
func DecodeBody(req *http.Request, v any) error {
	if req == nil || req.Body == nil || req.Body == http.NoBody {
		return ErrEmptyBody
	}
	if err := jsonutil.Decode(req.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// requestInstance prefers the request target the client sent, which mounted
// handlers keep after http.StripPrefix rewrites the URL.
func requestInstance(req *http.Request) string {
	if req == nil {
		return ""
	}
	if req.RequestURI != "" {
		return req.RequestURI
	}
	if req.URL == nil {
		return ""
	}
	return req.URL.RequestURI()
}

func requestContext(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}
