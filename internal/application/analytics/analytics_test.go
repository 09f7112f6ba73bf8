package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore catálogo de 3 productos, dos ventas completadas y una cancelada.
func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()
	for _, p := range []entity.Product{
		{ID: "cafe", SKU: "CAFE", Name: "Café", Category: "Bebidas", Price: decimal.NewFromInt(20), Stock: 30},
		{ID: "te", SKU: "TE", Name: "Té", Category: "Bebidas", Price: decimal.NewFromInt(10), Stock: 8},
		{ID: "pan", SKU: "PAN", Name: "Pan", Category: "", Price: decimal.NewFromInt(5), Stock: 3},
	} {
		p.IsActive = true
		p.CreatedAt, p.UpdatedAt = now, now
		require.NoError(t, store.Products().Create(ctx, &p))
	}

	create := sales.NewCreateSaleUseCase(store, store.Products(), sales.Numbering{Prefix: "SALE", Width: 6}, nil, zerolog.Nop())
	cancel := sales.NewCancelSaleUseCase(store, store.Products(), nil, zerolog.Nop())

	_, err := create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "cafe", Quantity: 2}, {ProductID: "pan", Quantity: 1}},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "te", Quantity: 3}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	cancelled, err := create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "cafe", Quantity: 10}},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	_, err = cancel.CancelSale(ctx, cancelled.ID)
	require.NoError(t, err)
	return store
}

func TestDashboard_Resumen(t *testing.T) {
	store := seedStore(t)
	uc := analytics.NewDashboardUseCase(store.Analytics(), 10)

	summary, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.Today.TotalSales)
	assert.True(t, decimal.NewFromInt(75).Equal(summary.Today.TotalRevenue))
	assert.Equal(t, int64(6), summary.Today.TotalItems)
	assert.Equal(t, int64(2), summary.Monthly.TotalSales)
	assert.True(t, summary.Today.TotalRevenue.Equal(summary.Yearly.TotalRevenue))

	assert.Equal(t, int64(3), summary.Products.Total)
	assert.Equal(t, int64(2), summary.Products.LowStock) // té 5, pan 2

	require.Len(t, summary.TopProducts, 3)
	assert.Equal(t, "TE", summary.TopProducts[0].SKU)
	assert.Equal(t, int64(3), summary.TopProducts[0].TotalQuantity)
	assert.NotEmpty(t, summary.DateLabel)
}

func TestReport_SalesChart(t *testing.T) {
	store := seedStore(t)
	uc := analytics.NewReportUseCase(store.Analytics(), 10)
	ctx := context.Background()

	week, err := uc.SalesChart(ctx, dto.ReportPeriodRequest{})
	require.NoError(t, err)
	assert.Equal(t, "week", week.Period)
	assert.Equal(t, "day", week.Granularity)
	require.Len(t, week.Points, 1)
	assert.Equal(t, int64(2), week.Points[0].TotalSales)
	assert.Equal(t, time.Now().Format("2006-01-02"), week.Points[0].Label)

	year, err := uc.SalesChart(ctx, dto.ReportPeriodRequest{Period: "YEAR"})
	require.NoError(t, err)
	assert.Equal(t, "month", year.Granularity)
	require.Len(t, year.Points, 1)
	assert.Equal(t, time.Now().Format("2006-01"), year.Points[0].Label)

	_, err = uc.SalesChart(ctx, dto.ReportPeriodRequest{Period: "decade"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReport_CategorySales(t *testing.T) {
	store := seedStore(t)
	uc := analytics.NewReportUseCase(store.Analytics(), 10)

	rows, err := uc.CategorySales(context.Background(), dto.ReportPeriodRequest{Period: "month"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bebidas", rows[0].Category)
	assert.True(t, decimal.NewFromInt(70).Equal(rows[0].TotalRevenue))
	assert.Equal(t, int64(5), rows[0].TotalQuantity)
	assert.Equal(t, int64(2), rows[0].SalesCount)
	assert.Equal(t, memory.UncategorizedLabel, rows[1].Category)
}

func TestReport_TopProductsYLowStock(t *testing.T) {
	store := seedStore(t)
	uc := analytics.NewReportUseCase(store.Analytics(), 10)
	ctx := context.Background()

	top, err := uc.TopProducts(ctx, dto.ReportPeriodRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "TE", top[0].SKU)

	low, err := uc.LowStock(ctx, dto.LowStockRequest{})
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "PAN", low[0].SKU)
	assert.Equal(t, int64(2), low[0].Stock)

	threshold := int64(2)
	low, err = uc.LowStock(ctx, dto.LowStockRequest{Threshold: &threshold})
	require.NoError(t, err)
	assert.Len(t, low, 1)

	negative := int64(-1)
	_, err = uc.LowStock(ctx, dto.LowStockRequest{Threshold: &negative})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
