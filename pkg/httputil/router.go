package httputil

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Middleware wraps an http.Handler to modify or enhance its behavior.
type Middleware func(http.Handler) http.Handler

// Router registers method-qualified patterns ("GET /path/{id}") on a
// ServeMux, applying its middleware chain around the whole mux.
type Router struct {
	mux        *http.ServeMux
	server     *http.Server
	prefix     string
	middleware []Middleware
	mu         sync.RWMutex
}

func NewRouter() *Router {
	return &Router{
		mux:    http.NewServeMux(),
		server: &http.Server{},
	}
}

// Use appends middleware; middleware run in the order they were added.
func (r *Router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Handle registers a handler for "METHOD /pattern" as introduced by the
// Go 1.22 routing enhancements.
func (r *Router) Handle(methodPattern string, handler http.Handler) {
	parts := strings.SplitN(methodPattern, " ", 2)
	if len(parts) != 2 {
		panic(fmt.Sprintf("invalid method pattern: %s", methodPattern))
	}
	method, pattern := parts[0], parts[1]

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mux.Handle(fmt.Sprintf("%s %s%s", method, r.prefix, pattern), handler)
}

// HandleFunc is Handle for plain functions.
func (r *Router) HandleFunc(methodPattern string, handler func(http.ResponseWriter, *http.Request)) {
	r.Handle(methodPattern, http.HandlerFunc(handler))
}

// Handler returns the mux wrapped in the middleware chain.
func (r *Router) Handler() http.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var handler http.Handler = r.mux
	for i := len(r.middleware) - 1; i >= 0; i-- {
		handler = r.middleware[i](handler)
	}
	return handler
}

// ListenAndServe starts the HTTP server on addr.
func (r *Router) ListenAndServe(addr string) error {
	r.server.Addr = addr
	r.server.Handler = r.Handler()
	return r.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}
