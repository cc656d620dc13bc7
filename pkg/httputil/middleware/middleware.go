// Package middleware provides the HTTP middleware the proxy composes around
// its handlers: request ids, structured request logging, CORS, and a TTL
// response cache.
package middleware

import "net/http"

// ResponseRecorder wraps http.ResponseWriter to capture the status code and
// body for logging and caching.
type ResponseRecorder struct {
	http.ResponseWriter
	StatusCode int
	body       []byte
	recordBody bool
}

func NewResponseRecorder(w http.ResponseWriter) *ResponseRecorder {
	return &ResponseRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
}

func (rr *ResponseRecorder) WriteHeader(statusCode int) {
	rr.StatusCode = statusCode
	rr.ResponseWriter.WriteHeader(statusCode)
}

func (rr *ResponseRecorder) Write(b []byte) (int, error) {
	if rr.recordBody {
		rr.body = append(rr.body, b...)
	}
	return rr.ResponseWriter.Write(b)
}
