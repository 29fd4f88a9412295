package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRemoteAddr = "1.2.3.4:1234"

func newRateLimitedHandler(ratePerSecond float64, burst int) (echo.HandlerFunc, *metrics.RelayMetrics) {
	m := metrics.NewRelayMetrics(prometheus.NewRegistry())
	mw := newConnectionRateLimiter(ratePerSecond, burst, m)
	handler := ErrorHandlingMiddleware()(mw(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}))
	return handler, m
}

func serveFrom(t *testing.T, handler echo.HandlerFunc, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestConnectionRateLimiterAllowsBurst(t *testing.T) {
	handler, _ := newRateLimitedHandler(10, 3)

	for range 3 {
		rec := serveFrom(t, handler, testRemoteAddr)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestConnectionRateLimiterRejectsExcess(t *testing.T) {
	handler, m := newRateLimitedHandler(0.01, 1)

	assert.Equal(t, http.StatusOK, serveFrom(t, handler, testRemoteAddr).Code)

	rec := serveFrom(t, handler, testRemoteAddr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "Too many connection attempts.", resp.Error)
	assert.Equal(t, "rate_limit", resp.Context["reason"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConnectionsRejected.WithLabelValues("rate_limit")))
}

func TestConnectionRateLimiterIsPerIP(t *testing.T) {
	handler, _ := newRateLimitedHandler(0.01, 1)

	assert.Equal(t, http.StatusOK, serveFrom(t, handler, testRemoteAddr).Code)
	assert.Equal(t, http.StatusOK, serveFrom(t, handler, "5.6.7.8:5678").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveFrom(t, handler, testRemoteAddr).Code)
}
