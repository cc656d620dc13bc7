package httputil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterConcurrentRegistration(t *testing.T) {
	r := NewRouter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.HandleFunc(fmt.Sprintf("GET /p%d", i), func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			r.Use(func(next http.Handler) http.Handler { return next })
		}(i)
	}
	wg.Wait()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRouterRejectsBarePattern(t *testing.T) {
	r := NewRouter()
	assert.Panics(t, func() {
		r.HandleFunc("/missing-method", func(http.ResponseWriter, *http.Request) {})
	})
}
