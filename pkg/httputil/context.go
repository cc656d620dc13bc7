package httputil

import "net/http"

type ContextKey string

const RequestIDCtxKey ContextKey = "RequestID"

// RequestID extracts the request id set by the request-id middleware.
func RequestID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(RequestIDCtxKey).(string)
	return id, ok
}
