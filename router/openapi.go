package router

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"
)

func allowAll(context.Context, *openapi3filter.AuthenticationInput) error {
	return nil
}

func oapiMiddleware(swagger *openapi3.T, authenticate openapi3filter.AuthenticationFunc, onError oapiMW.ErrorHandlerWithOpts) Middleware {
	if authenticate == nil {
		authenticate = allowAll
	}

	// Validate against a copy without servers so host names are never
	// matched. The caller keeps its servers for publishing.
	routed := *swagger
	routed.Servers = nil

	validatorOptions := &oapiMW.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: authenticate,
		},
		ErrorHandlerWithOpts: onError,
	}

	return oapiMW.OapiRequestValidatorWithOptions(&routed, validatorOptions)
}
