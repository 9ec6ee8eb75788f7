package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestNotify(t *testing.T) {
	m := New()

	m.Notify(cleaner.Event{Kind: cleaner.EventProfileApplied, Profile: "strip", Data: map[string]any{"changed": true}})
	m.Notify(cleaner.Event{Kind: cleaner.EventProfileApplied, Profile: "strip", Data: map[string]any{"changed": true}})
	m.Notify(cleaner.Event{Kind: cleaner.EventProfileApplied, Profile: "identity"})
	m.Notify(cleaner.Event{Kind: cleaner.EventDecodeFailed, Charset: "utf-8"})

	body := scrape(t, m)
	assert.Contains(t, body, `clipcleaner_profile_applications_total{changed="true",profile="strip"} 2`)
	assert.Contains(t, body, `clipcleaner_profile_applications_total{changed="false",profile="identity"} 1`)
	assert.Contains(t, body, `clipcleaner_engine_events_total{charset="utf-8",kind="decode_failed"} 1`)
}

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP("/api/clean", http.MethodPost, http.StatusOK, 3*time.Millisecond)
	m.ObserveHTTP("/api/clean", http.MethodPost, http.StatusNotFound, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `clipcleaner_http_requests_total{method="POST",route="/api/clean",status="200"} 1`)
	assert.Contains(t, body, `clipcleaner_http_requests_total{method="POST",route="/api/clean",status="404"} 1`)
	assert.Contains(t, body, `clipcleaner_http_request_duration_seconds_count{method="POST",route="/api/clean"} 2`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.ObserveHTTP("/health", http.MethodGet, http.StatusOK, time.Millisecond)

	assert.NotContains(t, scrape(t, b), `route="/health"`)
	assert.Contains(t, scrape(t, a), "go_goroutines")
}
