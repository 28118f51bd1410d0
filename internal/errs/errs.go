// Package errs defines the error shape returned to API clients.
//
// Handlers return *HTTPError values; the web layer renders them as JSON so every
// failure carries the same fields:
//
//	{"code":"NOT_FOUND","message":"Schedule not found or not authorized","status":404}
package errs
