package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSalesMetrics_Contadores(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSalesMetrics(reg)

	m.RecordSaleCreated(decimal.RequireFromString("350.50"), 20*time.Millisecond)
	m.RecordSaleCreated(decimal.NewFromInt(100), 10*time.Millisecond)
	m.RecordSaleCancelled()
	m.RecordRejected(fmt.Errorf("%w: producto p1", domain.ErrInsufficientStock))
	m.RecordRejected(domain.ErrInsufficientStock)
	m.RecordTxRetry()
	m.SetOutboxPending(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesCreated))
	assert.Equal(t, 450.5, testutil.ToFloat64(m.revenue))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.salesCancelled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesRejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.txRetries))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.outboxPending))
}

func TestSalesMetrics_ReutilizaCollectorsRegistrados(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewSalesMetrics(reg)
	second := NewSalesMetrics(reg)

	first.RecordSaleCancelled()
	second.RecordSaleCancelled()

	assert.Equal(t, 2.0, testutil.ToFloat64(second.salesCancelled))
}

func TestSalesMetrics_NilEsNoOp(t *testing.T) {
	var m *SalesMetrics
	assert.NotPanics(t, func() {
		m.RecordSaleCreated(decimal.NewFromInt(1), time.Second)
		m.RecordSaleCancelled()
		m.RecordRejected(domain.ErrConflict)
		m.RecordTxRetry()
		m.RecordEventPublished()
		m.RecordEventFailed()
		m.SetOutboxPending(1)
	})
}

func TestRejectReason(t *testing.T) {
	assert.Equal(t, "transient", RejectReason(fmt.Errorf("%w: timeout", domain.ErrTransientStore)))
	assert.Equal(t, "inconsistent", RejectReason(domain.ErrInconsistent))
	assert.Equal(t, "inactive", RejectReason(domain.ErrInactiveProduct))
	assert.Equal(t, "internal", RejectReason(errors.New("boom")))
}
