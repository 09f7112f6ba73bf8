package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const namespace = "pos"

// SalesMetrics métricas Prometheus del motor de ventas y del outbox.
// Todos los métodos aceptan receptor nil (métricas desactivadas).
type SalesMetrics struct {
	salesCreated   prometheus.Counter
	salesCancelled prometheus.Counter
	salesRejected  *prometheus.CounterVec
	revenue        prometheus.Counter
	createDuration prometheus.Histogram
	txRetries      prometheus.Counter

	eventsPublished prometheus.Counter
	eventsFailed    prometheus.Counter
	outboxPending   prometheus.Gauge
}

// NewSalesMetrics registra las métricas en el registerer dado (DefaultRegisterer si es nil).
func NewSalesMetrics(registerer prometheus.Registerer) *SalesMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &SalesMetrics{
		salesCreated: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_created_total",
			Help: "Ventas creadas y confirmadas.",
		})),
		salesCancelled: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_cancelled_total",
			Help: "Ventas canceladas con stock restaurado.",
		})),
		salesRejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_rejected_total",
			Help: "Operaciones de venta rechazadas por motivo.",
		}, []string{"reason"})),
		revenue: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_revenue_total",
			Help: "Suma de totales de ventas creadas.",
		})),
		createDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "sale_create_duration_seconds",
			Help:    "Duración de CreateSale incluyendo la transacción.",
			Buckets: prometheus.DefBuckets,
		})),
		txRetries: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "store_tx_retries_total",
			Help: "Reintentos de transacción por fallas transitorias.",
		})),
		eventsPublished: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sale_events_published_total",
			Help: "Eventos de venta publicados desde el outbox.",
		})),
		eventsFailed: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sale_events_failed_total",
			Help: "Intentos de publicación fallidos.",
		})),
		outboxPending: register(registerer, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sale_events_pending",
			Help: "Eventos pendientes en el outbox.",
		})),
	}
}

// register registra el collector o reutiliza el existente con el mismo nombre.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			existing, ok := already.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector ya registrado con tipo inesperado: %v", err))
			}
			return existing
		}
		panic(fmt.Sprintf("registrar collector: %v", err))
	}
	return collector
}

// RecordSaleCreated cuenta la venta y suma su total.
func (m *SalesMetrics) RecordSaleCreated(total decimal.Decimal, duration time.Duration) {
	if m == nil {
		return
	}
	m.salesCreated.Inc()
	m.revenue.Add(total.InexactFloat64())
	m.createDuration.Observe(duration.Seconds())
}

// RecordSaleCancelled cuenta una cancelación exitosa.
func (m *SalesMetrics) RecordSaleCancelled() {
	if m == nil {
		return
	}
	m.salesCancelled.Inc()
}

// RecordRejected cuenta un rechazo clasificado por tipo de error.
func (m *SalesMetrics) RecordRejected(err error) {
	if m == nil || err == nil {
		return
	}
	m.salesRejected.WithLabelValues(RejectReason(err)).Inc()
}

// RecordTxRetry cuenta un reintento de transacción.
func (m *SalesMetrics) RecordTxRetry() {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

// RecordEventPublished cuenta un evento entregado.
func (m *SalesMetrics) RecordEventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}

// RecordEventFailed cuenta un intento de publicación fallido.
func (m *SalesMetrics) RecordEventFailed() {
	if m == nil {
		return
	}
	m.eventsFailed.Inc()
}

// SetOutboxPending fija el gauge de pendientes.
func (m *SalesMetrics) SetOutboxPending(n int) {
	if m == nil {
		return
	}
	m.outboxPending.Set(float64(n))
}

// RejectReason etiqueta corta para un error de dominio.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInactiveProduct):
		return "inactive"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return "conflict"
	case errors.Is(err, domain.ErrTransientStore):
		return "transient"
	case errors.Is(err, domain.ErrInconsistent):
		return "inconsistent"
	}
	return "internal"
}
