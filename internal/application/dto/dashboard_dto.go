package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatsDTO totales de ventas completadas en un período.
type PeriodStatsDTO struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalItems   int64           `json:"total_items"`
}

// ProductCountsDTO conteos del catálogo activo.
type ProductCountsDTO struct {
	Total    int64 `json:"total"`
	LowStock int64 `json:"low_stock"`
}

// TopProductDTO producto más vendido por cantidad.
type TopProductDTO struct {
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// DashboardSummaryDTO respuesta de GET /api/stats/dashboard.
type DashboardSummaryDTO struct {
	Today       PeriodStatsDTO   `json:"today"`
	Monthly     PeriodStatsDTO   `json:"monthly"`
	Yearly      PeriodStatsDTO   `json:"yearly"`
	Products    ProductCountsDTO `json:"products"`
	TopProducts []TopProductDTO  `json:"top_products"`
	DateLabel   string           `json:"date_label"` // ej: "Febrero 2026"
}

// ReportPeriodRequest parámetro period=week|month|year.
type ReportPeriodRequest struct {
	Period string `query:"period"`
	Limit  int    `query:"limit"`
}

// SalesChartPointDTO bucket de la serie (día o mes).
type SalesChartPointDTO struct {
	Period       time.Time       `json:"period"`
	Label        string          `json:"label"` // 2026-02-14 o 2026-02
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// SalesChartDTO respuesta de GET /api/stats/sales-chart.
type SalesChartDTO struct {
	Period      string               `json:"period"`
	Granularity string               `json:"granularity"`
	From        time.Time            `json:"from"`
	Points      []SalesChartPointDTO `json:"points"`
}

// CategorySalesDTO ventas por categoría.
type CategorySalesDTO struct {
	Category      string          `json:"category"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	SalesCount    int64           `json:"sales_count"`
}

// LowStockRequest parámetros de GET /api/stats/low-stock.
type LowStockRequest struct {
	Threshold *int64 `query:"threshold"`
	Limit     int    `query:"limit"`
}

// LowStockProductDTO producto activo con stock bajo.
type LowStockProductDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Stock     int64           `json:"stock"`
	Price     decimal.Decimal `json:"price"`
}
