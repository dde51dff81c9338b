// Package observability expone métricas Prometheus del servicio de inventario.
// Todos los métodos aceptan un receptor nil para que los servicios funcionen sin métricas.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa el registry y los contadores del dominio.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	movements         *prometheus.CounterVec
	insufficientStock *prometheus.CounterVec
	reservedClamped   prometheus.Counter
	sequenceRetries   *prometheus.CounterVec
	transferStates    *prometheus.CounterVec
}

// NewMetrics inicializa un registry propio (no el global) con las métricas base.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_http_requests_total",
			Help: "Peticiones HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventory_http_request_duration_seconds",
			Help:    "Duración de peticiones HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_movements_total",
			Help: "Movimientos escritos en el kardex por tipo.",
		}, []string{"type"}),
		insufficientStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_insufficient_stock_total",
			Help: "Operaciones rechazadas por stock insuficiente.",
		}, []string{"operation"}),
		reservedClamped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_reserved_clamped_total",
			Help: "Descuentos que superaron la reserva y la llevaron a cero.",
		}),
		sequenceRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_sequence_retries_total",
			Help: "Reintentos de transacción por colisión de consecutivo.",
		}, []string{"operation"}),
		transferStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_transfer_transitions_total",
			Help: "Transiciones de traslados por estado destino.",
		}, []string{"to"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.movements, m.insufficientStock, m.reservedClamped, m.sequenceRetries, m.transferStates,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// FiberHandler monta Handler en fiber.
func (m *Metrics) FiberHandler() fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}

// Middleware registra conteo y duración por ruta.
func (m *Metrics) Middleware() fiber.Handler {
	if m == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Route().Path
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Registerer expone el registry para métricas adicionales.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func (m *Metrics) MovementRecorded(movementType string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(movementType).Inc()
}

func (m *Metrics) InsufficientStock(operation string) {
	if m == nil {
		return
	}
	m.insufficientStock.WithLabelValues(operation).Inc()
}

func (m *Metrics) ReservedClamped() {
	if m == nil {
		return
	}
	m.reservedClamped.Inc()
}

func (m *Metrics) SequenceRetry(operation string) {
	if m == nil {
		return
	}
	m.sequenceRetries.WithLabelValues(operation).Inc()
}

func (m *Metrics) TransferTransition(to string) {
	if m == nil {
		return
	}
	m.transferStates.WithLabelValues(to).Inc()
}
