// Package info serves the endpoints that sit next to an API: the OpenAPI
// document as JSON, a documentation UI that renders it, and the status,
// liveness, readiness and version endpoints.
//
// Three documentation UIs are embedded:
//   - Swagger UI (default)
//   - Redoc
//   - Scalar
//
// Select one with WithUI, or bring your own html/template with WithTemplate.
package info
