// Package params turns the raw, string-only query of a request into values
// typed after the OpenAPI parameter list of the matched operation.
//
// Every parameter resolves through a fixed fallback chain: the supplied raw
// value, then schema.default, then the parameter example. Parameters that
// resolve to nothing are left out of the result. Minimum and maximum are
// carried on ParameterSpec but never enforced here; bounds belong to the request
// validator.
//
// Parse is a pure function and safe for concurrent use.
package params
