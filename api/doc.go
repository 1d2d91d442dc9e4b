// Package api binds an OpenAPI document to controller functions.
//
// New validates the configuration once and returns an immutable
// http.Handler. Each request goes through the document's request validator
// (apiKey security schemes are checked against the shared secret), is
// matched to its operation, has its query coerced by package params, and
// reaches the controller registered under the operationId. Operations
// without a controller answer with a mock built from the document. Every
// successful result is validated against the declared response before it is
// written.
package api
