package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/tabrest/tabrest/pkg/httputil"
)

const RequestIDHeader = "X-Request-Id"

// RequestID assigns each request a unique id, exposed via context and the
// X-Request-Id response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, ok := r.Context().Value(httputil.RequestIDCtxKey).(string)
		if !ok || reqID == "" {
			reqID = uuid.New().String()
		}

		ctx := context.WithValue(r.Context(), httputil.RequestIDCtxKey, reqID)
		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
