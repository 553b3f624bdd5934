// Package metrics expone las métricas Prometheus del servicio en un registro propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contadores e histogramas del servicio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	MovementsTotal   *prometheus.CounterVec
	MovementDuration *prometheus.HistogramVec
	ConflictRetries  *prometheus.CounterVec

	PriceCacheLookups *prometheus.CounterVec
}

// New registra todas las métricas bajo namespace (p. ej. "stockledger").
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total de peticiones HTTP",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Peticiones HTTP en curso",
		},
	)

	m.MovementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Movimientos de stock por operación y resultado",
		},
		[]string{"operation", "outcome"},
	)
	m.MovementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_movement_duration_seconds",
			Help:      "Duración de los movimientos de stock (incluye reintentos)",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)
	m.ConflictRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_conflict_retries_total",
			Help:      "Reintentos por conflicto de versión",
		},
		[]string{"operation"},
	)

	m.PriceCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_cache_lookups_total",
			Help:      "Consultas a la caché de precios por resultado",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.HTTPRequestsInFlight,
		m.MovementsTotal, m.MovementDuration, m.ConflictRetries,
		m.PriceCacheLookups,
	)
	return m
}

// ObserveMovement implementa inventory.MovementRecorder.
func (m *Metrics) ObserveMovement(operation, outcome string, elapsed time.Duration) {
	m.MovementsTotal.WithLabelValues(operation, outcome).Inc()
	m.MovementDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// IncConflictRetry implementa inventory.MovementRecorder.
func (m *Metrics) IncConflictRetry(operation string) {
	m.ConflictRetries.WithLabelValues(operation).Inc()
}

// ObserveCacheLookup result: hit, miss o error.
func (m *Metrics) ObserveCacheLookup(result string) {
	m.PriceCacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP registra una petición terminada. path debe ser la ruta registrada, no la URL real.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// AddInFlight ajusta el gauge de peticiones en curso.
func (m *Metrics) AddInFlight(delta float64) {
	m.HTTPRequestsInFlight.Add(delta)
}

// Registry expone el registro (pruebas).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler endpoint /metrics en formato de exposición Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
