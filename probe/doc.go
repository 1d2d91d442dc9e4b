// Package probe turns dependency checks into readiness and liveness probes
// for the info endpoints: plain ping functions, MongoDB clients, upstream
// HTTP services and the loaded OpenAPI document itself.
package probe
