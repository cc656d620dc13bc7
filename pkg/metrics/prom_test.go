package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	mw "github.com/tabrest/tabrest/pkg/httputil/middleware"
)

func TestInstrumentCountsRequests(t *testing.T) {
	counter := RequestsTotal.WithLabelValues(http.MethodGet, "404")
	before := testutil.ToFloat64(counter)

	handler := Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

// Instrument must wrap the response cache, not the other way around, so
// cache hits still show up in request metrics.
func TestInstrumentCountsCacheHits(t *testing.T) {
	counter := RequestsTotal.WithLabelValues(http.MethodGet, "200")
	before := testutil.ToFloat64(counter)

	handler := Instrument(mw.ResponseCache(mw.NewCache(), time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{}"))
		})))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users", nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}
