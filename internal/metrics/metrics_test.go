package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	m := New()
	m.ObserveAuth("password", "success")
	m.ObserveAuth("password", "success")
	m.ObserveAuth("external", "created")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("password", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("external", "created")))
}

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/favorites", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/favorites", "200")))
}

func TestNew_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.ObserveAuth("password", "rejected")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.AuthAttempts.WithLabelValues("password", "rejected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.AuthAttempts.WithLabelValues("password", "rejected")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveAuth("password", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `auth_attempts_total{method="password",outcome="success"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
