// Package openapiserver serves OpenAPI 3 documents. Hand it a document and a
// set of controllers keyed by operationId and it validates requests and
// responses against the document, checks apiKey credentials, coerces query
// parameters into their declared types and answers operations that have no
// controller from their examples and schemas.
//
// # Packages
//
//   - params: the query coercion engine. Raw query strings become typed
//     values following schema.default and parameter examples.
//   - api: one document bound to its controllers as an http.Handler.
//   - server: several APIs mounted under /<version>/ with docs, health
//     endpoints, static files and graceful shutdown.
//   - router: the middleware chain (request ids, logging, security headers,
//     CORS, rate limiting, gzip, timeouts, OpenAPI request validation).
//   - responder: RFC 9457 problem responses with ULID trace ids.
//   - info: openapi.json, the documentation UI and the status, healthz,
//     readyz and version endpoints.
//   - probe: readiness checks for MongoDB, upstream HTTP services, plain
//     functions and the document itself.
//   - jsonutil: sonic backed JSON helpers.
//
// # Quick Start
//
//	doc, _ := openapi3.NewLoader().LoadFromFile("openapi.yaml")
//	srv, err := server.New(server.Config{
//	    APIs: []api.Config{{
//	        Version: "v1",
//	        Spec:    doc,
//	        Secret:  os.Getenv("API_SECRET"),
//	        Controllers: map[string]api.Controller{
//	            "listItems": func(ctx context.Context, req *api.Request) (any, error) {
//	                page, _ := req.Params.Int("page")
//	                return store.List(ctx, page)
//	            },
//	        },
//	    }},
//	    Logger: logger,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.ListenAndServe(ctx, ":8080")
//
// The cmd/apiserver binary wraps the same wiring behind flags and
// APISERVER_ environment variables.
package openapiserver
