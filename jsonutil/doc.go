// Package jsonutil wraps sonic so the rest of the module shares one JSON
// configuration for request bodies, responses, and the served OpenAPI document.
package jsonutil
