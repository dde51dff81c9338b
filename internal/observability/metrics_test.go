package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExponeContadores(t *testing.T) {
	m := NewMetrics()
	m.MovementRecorded("sale")
	m.ReservedClamped()
	m.InsufficientStock("deduct")

	body := scrape(t, m)
	assert.Contains(t, body, `inventory_movements_total{type="sale"} 1`)
	assert.Contains(t, body, "inventory_reserved_clamped_total 1")
	assert.Contains(t, body, `inventory_insufficient_stock_total{operation="deduct"} 1`)
}

func TestMetricsMiddlewareRegistraPeticion(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusTeapot) })
	app.Get("/metrics", m.FiberHandler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `inventory_http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `inventory_http_request_duration_seconds_bucket{route="/test"`)
}

func TestMetricsNilSeguro(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MovementRecorded("restock")
		m.ReservedClamped()
		m.SequenceRetry("deduct")
		m.TransferTransition("completed")
		m.InsufficientStock("reserve")
	})
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
