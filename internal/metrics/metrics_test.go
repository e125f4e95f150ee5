package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestCacheObserver(t *testing.T) {
	observe := CacheObserver("observer_test")
	observe(true)
	observe(true)
	observe(false)

	body := scrape(t)
	assert.Contains(t, body, `eventdash_cache_lookups_total{cache="observer_test",result="hit"} 2`)
	assert.Contains(t, body, `eventdash_cache_lookups_total{cache="observer_test",result="miss"} 1`)
}

func TestHandlerExposesCollectors(t *testing.T) {
	Registrations.WithLabelValues(OutcomeSuccess).Inc()

	assert.Contains(t, scrape(t), "eventdash_registrations_total")
}
