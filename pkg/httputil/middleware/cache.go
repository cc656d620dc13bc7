package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Cache is a simple in-memory store with per-entry expiration.
type Cache struct {
	items map[string]cacheItem
	sync.RWMutex
}

type cacheItem struct {
	value      []byte
	expiration time.Time
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]cacheItem)}
}

// Set adds an item with the given time-to-live.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	c.Lock()
	defer c.Unlock()
	c.items[key] = cacheItem{value: value, expiration: time.Now().Add(ttl)}
}

// Get retrieves an unexpired item.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.RLock()
	item, found := c.items[key]
	c.RUnlock()
	if !found {
		return nil, false
	}
	if time.Now().After(item.expiration) {
		c.Lock()
		delete(c.items, key)
		c.Unlock()
		return nil, false
	}
	return item.value, true
}

// CleanupExpired removes expired items.
func (c *Cache) CleanupExpired() {
	c.Lock()
	defer c.Unlock()
	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiration) {
			delete(c.items, key)
		}
	}
}

// ResponseCache caches successful responses for GET requests and for
// POST /execute/sql (keyed additionally on a body digest), serving repeat
// requests from memory. Only 200 responses are stored.
func ResponseCache(cache *Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, cacheable := cacheKey(r)
			if !cacheable {
				next.ServeHTTP(w, r)
				return
			}

			if body, ok := cache.Get(key); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(body)
				return
			}

			rec := NewResponseRecorder(w)
			rec.recordBody = true
			next.ServeHTTP(rec, r)

			if rec.StatusCode == http.StatusOK {
				cache.Set(key, rec.body, ttl)
			}
		})
	}
}

func cacheKey(r *http.Request) (string, bool) {
	switch {
	case r.Method == http.MethodGet:
		return strings.ToLower(r.Method + "-" + r.URL.Path + "?" + r.URL.RawQuery), true
	case r.Method == http.MethodPost && r.URL.Path == "/execute/sql":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return "", false
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		sum := sha256.Sum256(body)
		return strings.ToLower(r.Method+"-"+r.URL.Path) + "#" + hex.EncodeToString(sum[:]), true
	default:
		return "", false
	}
}
