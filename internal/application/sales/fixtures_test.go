package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memory.Store
	metrics *metrics.SalesMetrics
	create  *sales.CreateSaleUseCase
	cancel  *sales.CancelSaleUseCase
	update  *sales.UpdateSaleUseCase
	query   *sales.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRunner(t, nil)
}

// newFixtureWithRunner permite envolver el store con otro TxRunner (decoradores de prueba).
func newFixtureWithRunner(t *testing.T, wrap func(*memory.Store) sales.TxRunner) *fixture {
	t.Helper()
	store := memory.NewStore()
	var runner sales.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	m := metrics.NewSalesMetrics(prometheus.NewRegistry())
	log := zerolog.Nop()
	cancel := sales.NewCancelSaleUseCase(runner, store.Products(), m, log)
	return &fixture{
		store:   store,
		metrics: m,
		create:  sales.NewCreateSaleUseCase(runner, store.Products(), sales.Numbering{Prefix: "SALE", Width: 6}, m, log),
		cancel:  cancel,
		update:  sales.NewUpdateSaleUseCase(runner, store.Products(), cancel, m),
		query:   sales.NewQueryUseCase(store.Sales(), store.Products()),
	}
}

func (f *fixture) addProduct(t *testing.T, id string, price string, stock int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        id,
		SKU:       "SKU-" + id,
		Name:      "Producto " + id,
		Category:  "General",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) deactivate(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.Products().GetByID(ctx, id)
	require.NoError(t, err)
	p.IsActive = false
	require.NoError(t, f.store.Products().Update(ctx, p))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
