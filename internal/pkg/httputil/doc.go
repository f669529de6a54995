// Package httputil provides shared HTTP response/request helpers for the
// API handlers.
//
// Handlers should use these helpers instead of writing raw
// http.ResponseWriter calls, so JSON formatting, error envelopes, and
// logging stay consistent across all endpoints.
package httputil
