// Package router wraps http.ServeMux with the middleware chain the API
// server runs: request ids and logging, security headers, CORS, per-client
// rate limiting, gzip compression, timeouts, and OpenAPI request validation
// with a pluggable authentication hook. ExampleNew_customOptions shows how to
// combine built-in and custom middlewares.
package router
