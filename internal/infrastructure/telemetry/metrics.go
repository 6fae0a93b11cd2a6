package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds the Prometheus collectors exposed on /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DeductionsTotal    *prometheus.CounterVec
	DeductionShortfall prometheus.Counter
	DeductionConflicts prometheus.Counter

	BreakagesTotal *prometheus.CounterVec
	BreakageLoss   *prometheus.CounterVec

	SalesTotal  prometheus.Counter
	SalesAmount prometheus.Counter

	PurchaseOrdersClosed prometheus.Counter
	WeightDiscrepancies  prometheus.Counter

	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors under namespace
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests currently being processed",
	})

	m.DeductionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_deductions_total",
		Help:      "FIFO deductions by outcome (satisfied or short)",
	}, []string{"outcome"})

	m.DeductionShortfall = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_deduction_shortfall_quantity_total",
		Help:      "Quantity requested but not deducted because stock ran out",
	})

	m.DeductionConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_deduction_conflicts_total",
		Help:      "Conditional batch decrements that lost a race and were retried",
	})

	m.BreakagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "breakages_total",
		Help:      "Breakages recorded by reason",
	}, []string{"reason"})

	m.BreakageLoss = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "breakage_loss_total",
		Help:      "Monetary loss of recorded breakages by reason",
	}, []string{"reason"})

	m.SalesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_total",
		Help:      "Sales recorded",
	})

	m.SalesAmount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_amount_total",
		Help:      "Sum of recorded sale totals",
	})

	m.PurchaseOrdersClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_orders_closed_total",
		Help:      "Purchase orders approved at receiving",
	})

	m.WeightDiscrepancies = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weight_discrepancies_total",
		Help:      "Closings whose scale weight diverged materially from the note weight",
	})

	m.CircuitBreakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	m.CircuitBreakerTrips = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	}, []string{"name"})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DeductionsTotal,
		m.DeductionShortfall,
		m.DeductionConflicts,
		m.BreakagesTotal,
		m.BreakageLoss,
		m.SalesTotal,
		m.SalesAmount,
		m.PurchaseOrdersClosed,
		m.WeightDiscrepancies,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)

	return m
}

// Handler returns the HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncInFlight increments the in-flight gauge
func (m *Metrics) IncInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Inc()
	}
}

// DecInFlight decrements the in-flight gauge
func (m *Metrics) DecInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Dec()
	}
}

// ObserveDeduction records the outcome of one FIFO deduction
func (m *Metrics) ObserveDeduction(requested, deducted decimal.Decimal) {
	if m == nil {
		return
	}
	short := requested.Sub(deducted)
	if short.IsPositive() {
		m.DeductionsTotal.WithLabelValues("short").Inc()
		m.DeductionShortfall.Add(short.InexactFloat64())
		return
	}
	m.DeductionsTotal.WithLabelValues("satisfied").Inc()
}

// ObserveDeductionConflict records a lost conditional decrement
func (m *Metrics) ObserveDeductionConflict() {
	if m != nil {
		m.DeductionConflicts.Inc()
	}
}

// ObserveBreakage records one breakage and its loss
func (m *Metrics) ObserveBreakage(reason string, loss decimal.Decimal) {
	if m == nil {
		return
	}
	m.BreakagesTotal.WithLabelValues(reason).Inc()
	m.BreakageLoss.WithLabelValues(reason).Add(loss.InexactFloat64())
}

// ObserveSale records one sale
func (m *Metrics) ObserveSale(total decimal.Decimal) {
	if m == nil {
		return
	}
	m.SalesTotal.Inc()
	m.SalesAmount.Add(total.InexactFloat64())
}

// ObserveClosing records an approved purchase order
func (m *Metrics) ObserveClosing(materialDiscrepancy bool) {
	if m == nil {
		return
	}
	m.PurchaseOrdersClosed.Inc()
	if materialDiscrepancy {
		m.WeightDiscrepancies.Inc()
	}
}

// SetCircuitBreakerState records a breaker state transition
func (m *Metrics) SetCircuitBreakerState(name string, state int, tripped bool) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	if tripped {
		m.CircuitBreakerTrips.WithLabelValues(name).Inc()
	}
}
