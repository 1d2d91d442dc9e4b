package api

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"

	"github.com/drblury/openapiserver/params"
	"github.com/drblury/openapiserver/responder"
)

func (a *API) dispatch(w http.ResponseWriter, r *http.Request) {
	route, pathParams, err := a.routes.FindRoute(r)
	if err != nil {
		a.resp.HandleNotFoundError(w, r, err)
		return
	}

	op, err := a.lookup(route)
	if err != nil {
		a.resp.HandleNotFoundError(w, r, err)
		return
	}

	if op.controller == nil {
		status, body := mockResponse(op.spec)
		a.respond(w, r, route, pathParams, &Response{Status: status, Body: body})
		return
	}

	values, err := params.Parse(params.FromValues(r.URL.Query()), op.query)
	if err != nil {
		a.resp.HandleBadRequestError(w, r, err, "failed to coerce query parameters")
		return
	}

	body, err := decodeJSONBody(r)
	if err != nil {
		a.resp.HandleBadRequestError(w, r, err, "failed to parse request body")
		return
	}

	req := &Request{
		OperationID: op.id,
		Operation:   op.spec,
		Params:      values,
		PathParams:  pathParams,
		Body:        body,
		URL:         r.URL,
		Header:      r.Header,
		HTTP:        r,
		Spec:        a.doc,
		Logger:      a.log.With("operationId", op.id),
		Meta:        a.meta,
	}

	result, err := op.controller(r.Context(), req)
	if err != nil {
		a.resp.HandleErrors(w, r, err, "controller failed", op.id)
		return
	}
	a.respond(w, r, route, pathParams, result)
}

// respond encodes result, validates it against the operation's declared
// responses and writes it. Invalid responses become a 502.
func (a *API) respond(w http.ResponseWriter, r *http.Request, route *routers.Route, pathParams map[string]string, result any) {
	status := 0
	header := http.Header{}
	payload := result

	if res, ok := result.(*Response); ok {
		payload = nil
		if res != nil {
			status = res.Status
			for k, v := range res.Header {
				header[k] = v
			}
			payload = res.Body
		}
	}

	var body []byte
	if payload == nil {
		if status == 0 {
			status = http.StatusNoContent
		}
	} else {
		if status == 0 {
			status = http.StatusOK
		}
		encoded, err := responder.MarshalPayload(payload)
		if err != nil {
			a.resp.HandleInternalServerError(w, r, err, "failed to encode response")
			return
		}
		body = encoded
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		},
		Status:  status,
		Header:  header,
		Options: &openapi3filter.Options{IncludeResponseStatus: true},
	}
	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(r.Context(), input); err != nil {
		a.resp.HandleAPIError(w, r, http.StatusBadGateway, fmt.Errorf("%w: %s", ErrInvalidResponse, firstLine(err.Error())))
		return
	}

	for k, v := range header {
		w.Header()[k] = v
	}
	if body == nil {
		w.WriteHeader(status)
		return
	}
	a.resp.RespondWithBody(w, status, header.Get("Content-Type"), body)
}

func (a *API) validationFailed(_ context.Context, err error, w http.ResponseWriter, r *http.Request, opts oapiMW.ErrorHandlerOpts) {
	a.resp.HandleAPIError(w, r, opts.StatusCode, errors.New(firstLine(err.Error())), "request validation failed")
}

func decodeJSONBody(r *http.Request) (any, error) {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil, nil
	}
	if !isJSON(r.Header.Get("Content-Type")) {
		return nil, nil
	}

	var body any
	if err := responder.DecodeBody(r, &body); err != nil {
		if errors.Is(err, responder.ErrEmptyBody) {
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func firstLine(msg string) string {
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return msg[:idx]
	}
	return msg
}
