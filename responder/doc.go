// Package responder writes JSON payloads and RFC 9457 problem documents for
// the API layer. Every problem carries a ULID trace id, taken from the request
// context when the router assigned one, and is logged through slog at the
// level configured for its status.
package responder
