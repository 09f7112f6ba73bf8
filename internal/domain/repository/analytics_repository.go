package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity tamaño del bucket de las series de ventas.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

// PeriodStats totales de ventas completadas en un rango.
type PeriodStats struct {
	TotalSales   int64
	TotalRevenue decimal.Decimal
	TotalItems   int64
}

// TopProductResult producto más vendido por cantidad.
type TopProductResult struct {
	ProductID     string
	SKU           string
	Name          string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
}

// SalesBucketResult bucket de la serie temporal de ventas.
type SalesBucketResult struct {
	Period       time.Time // inicio del bucket
	TotalSales   int64
	TotalRevenue decimal.Decimal
}

// CategorySalesResult ventas agregadas por categoría.
type CategorySalesResult struct {
	Category      string
	TotalQuantity int64
	TotalRevenue  decimal.Decimal
	SalesCount    int64
}

// ProductCounts conteos del catálogo para el dashboard.
type ProductCounts struct {
	Active   int64
	LowStock int64
}

// AnalyticsRepository consultas de lectura sobre ventas completadas y catálogo.
// Las implementaciones son read-only (no modifican datos) y no requieren consistencia
// transaccional con escrituras concurrentes.
type AnalyticsRepository interface {
	// GetPeriodStats usa COALESCE: devuelve ceros si no hay ventas en [start, end).
	GetPeriodStats(ctx context.Context, start, end time.Time) (PeriodStats, error)

	GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductResult, error)

	GetSalesSeries(ctx context.Context, start, end time.Time, granularity Granularity) ([]SalesBucketResult, error)

	// GetCategorySales ordena por ingreso descendente.
	GetCategorySales(ctx context.Context, start, end time.Time) ([]CategorySalesResult, error)

	// ── Catálogo ──────────────────────────────────────────────────────────────

	CountProducts(ctx context.Context, lowStockThreshold int64) (ProductCounts, error)

	// ListLowStock productos activos con stock <= threshold, por stock ascendente.
	ListLowStock(ctx context.Context, threshold int64, limit int) ([]LowStockResult, error)
}

// LowStockResult producto con stock bajo.
type LowStockResult struct {
	ProductID string
	SKU       string
	Name      string
	Category  string
	Stock     int64
	Price     decimal.Decimal
}
