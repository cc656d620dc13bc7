package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(hits *atomic.Int32, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func TestResponseCacheServesRepeatGETs(t *testing.T) {
	var hits atomic.Int32
	handler := ResponseCache(NewCache(), time.Minute)(countingHandler(&hits, http.StatusOK, `{"ok":true}`))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users?limit=10", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	}

	assert.Equal(t, int32(1), hits.Load())
}

func TestResponseCacheHitHeader(t *testing.T) {
	var hits atomic.Int32
	handler := ResponseCache(NewCache(), time.Minute)(countingHandler(&hits, http.StatusOK, "{}"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestResponseCacheKeyedOnQueryString(t *testing.T) {
	var hits atomic.Int32
	handler := ResponseCache(NewCache(), time.Minute)(countingHandler(&hits, http.StatusOK, "{}"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users?limit=10", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users?limit=20", nil))

	assert.Equal(t, int32(2), hits.Load())
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	var hits atomic.Int32
	handler := ResponseCache(NewCache(), time.Minute)(countingHandler(&hits, http.StatusNotFound, "{}"))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))

	assert.Equal(t, int32(2), hits.Load())
}

func TestResponseCacheExecuteSQLKeyedOnBody(t *testing.T) {
	var hits atomic.Int32
	var seen []string
	handler := ResponseCache(NewCache(), time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		seen = append(seen, string(body))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))

	post := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/execute/sql", strings.NewReader(body))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	post(`{"query":"SELECT 1"}`)
	post(`{"query":"SELECT 1"}`)
	post(`{"query":"SELECT 2"}`)

	// Identical bodies hit the cache; a different body does not. The body
	// must still reach the handler intact after keying.
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, []string{`{"query":"SELECT 1"}`, `{"query":"SELECT 2"}`}, seen)
}

func TestResponseCacheIgnoresOtherPOSTs(t *testing.T) {
	var hits atomic.Int32
	handler := ResponseCache(NewCache(), time.Minute)(countingHandler(&hits, http.StatusOK, "{}"))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(`{"name":"John"}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache()
	c.Set("key", []byte("value"), 10*time.Millisecond)

	got, ok := c.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("key")
	assert.False(t, ok)
}

func TestCacheCleanupExpired(t *testing.T) {
	c := NewCache()
	c.Set("stale", []byte("x"), 1*time.Millisecond)
	c.Set("fresh", []byte("y"), time.Minute)

	time.Sleep(5 * time.Millisecond)
	c.CleanupExpired()

	_, ok := c.Get("stale")
	assert.False(t, ok)
	_, ok = c.Get("fresh")
	assert.True(t, ok)
}
