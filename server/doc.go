// Package server assembles one or more APIs into a single http.Handler.
//
// Every API is mounted under /<version>/ next to its openapi.json and docs
// page. The status, healthz, readyz and version endpoints live at the root,
// and an optional static folder answers everything else. The whole tree sits
// behind the router package's middleware chain: request ids, logging,
// security headers, CORS, rate limiting, compression and a timeout.
package server
