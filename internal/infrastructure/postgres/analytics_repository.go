package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// uncategorized etiqueta de productos sin categoría; coincide con la implementación en memoria.
const uncategorized = "Sin categoría"

// AnalyticsRepo consultas de solo lectura sobre ventas completadas y catálogo.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// GetPeriodStats totales de ventas completadas en [start, end).
func (r *AnalyticsRepo) GetPeriodStats(ctx context.Context, start, end time.Time) (repository.PeriodStats, error) {
	const query = `
	SELECT
	    COUNT(*)                                   AS total_sales,
	    COALESCE(SUM(s.total), 0)                  AS total_revenue,
	    COALESCE(SUM(i.items), 0)::BIGINT          AS total_items
	FROM sales s
	LEFT JOIN LATERAL (
	    SELECT SUM(quantity) AS items FROM sale_items WHERE sale_id = s.id
	) i ON TRUE
	WHERE s.status = 'completed'
	  AND s.created_at >= $1 AND s.created_at < $2`

	var st repository.PeriodStats
	err := r.pool.QueryRow(ctx, query, start, end).Scan(&st.TotalSales, &st.TotalRevenue, &st.TotalItems)
	if err != nil {
		return repository.PeriodStats{}, fmt.Errorf("analytics.GetPeriodStats: %w", err)
	}
	return st, nil
}

// GetTopProducts productos más vendidos por cantidad en el período.
func (r *AnalyticsRepo) GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	const query = `
	SELECT
	    p.id,
	    p.sku,
	    p.name,
	    SUM(i.quantity)::BIGINT     AS total_quantity,
	    SUM(i.line_total)           AS total_revenue
	FROM sales s
	JOIN sale_items i ON i.sale_id = s.id
	JOIN products   p ON p.id      = i.product_id
	WHERE s.status = 'completed'
	  AND s.created_at >= $1 AND s.created_at < $2
	GROUP BY p.id, p.sku, p.name
	ORDER BY total_quantity DESC, total_revenue DESC, p.id
	LIMIT $3`

	rows, err := r.pool.Query(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetTopProducts: %w", err)
	}
	defer rows.Close()

	var out []repository.TopProductResult
	for rows.Next() {
		var row repository.TopProductResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.TotalQuantity, &row.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.GetTopProducts scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSalesSeries ventas por día o por mes.
func (r *AnalyticsRepo) GetSalesSeries(ctx context.Context, start, end time.Time, g repository.Granularity) ([]repository.SalesBucketResult, error) {
	unit := "day"
	if g == repository.GranularityMonth {
		unit = "month"
	}
	const query = `
	SELECT
	    date_trunc($3, s.created_at)   AS period,
	    COUNT(*)                       AS total_sales,
	    COALESCE(SUM(s.total), 0)      AS total_revenue
	FROM sales s
	WHERE s.status = 'completed'
	  AND s.created_at >= $1 AND s.created_at < $2
	GROUP BY period
	ORDER BY period`

	rows, err := r.pool.Query(ctx, query, start, end, unit)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetSalesSeries: %w", err)
	}
	defer rows.Close()

	var out []repository.SalesBucketResult
	for rows.Next() {
		var b repository.SalesBucketResult
		if err := rows.Scan(&b.Period, &b.TotalSales, &b.TotalRevenue); err != nil {
			return nil, fmt.Errorf("analytics.GetSalesSeries scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// GetCategorySales ingreso por categoría, descendente.
func (r *AnalyticsRepo) GetCategorySales(ctx context.Context, start, end time.Time) ([]repository.CategorySalesResult, error) {
	const query = `
	SELECT
	    COALESCE(NULLIF(p.category, ''), $3)  AS category,
	    SUM(i.quantity)::BIGINT               AS total_quantity,
	    SUM(i.line_total)                     AS total_revenue,
	    COUNT(DISTINCT s.id)                  AS sales_count
	FROM sales s
	JOIN sale_items i ON i.sale_id = s.id
	LEFT JOIN products p ON p.id = i.product_id
	WHERE s.status = 'completed'
	  AND s.created_at >= $1 AND s.created_at < $2
	GROUP BY 1
	ORDER BY total_revenue DESC, category`

	rows, err := r.pool.Query(ctx, query, start, end, uncategorized)
	if err != nil {
		return nil, fmt.Errorf("analytics.GetCategorySales: %w", err)
	}
	defer rows.Close()

	var out []repository.CategorySalesResult
	for rows.Next() {
		var row repository.CategorySalesResult
		if err := rows.Scan(&row.Category, &row.TotalQuantity, &row.TotalRevenue, &row.SalesCount); err != nil {
			return nil, fmt.Errorf("analytics.GetCategorySales scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountProducts activos y activos con stock bajo.
func (r *AnalyticsRepo) CountProducts(ctx context.Context, lowStockThreshold int64) (repository.ProductCounts, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE is_active)                  AS active,
	    COUNT(*) FILTER (WHERE is_active AND stock <= $1)  AS low_stock
	FROM products`

	var c repository.ProductCounts
	if err := r.pool.QueryRow(ctx, query, lowStockThreshold).Scan(&c.Active, &c.LowStock); err != nil {
		return repository.ProductCounts{}, fmt.Errorf("analytics.CountProducts: %w", err)
	}
	return c, nil
}

// ListLowStock productos activos con stock <= threshold, por stock ascendente.
func (r *AnalyticsRepo) ListLowStock(ctx context.Context, threshold int64, limit int) ([]repository.LowStockResult, error) {
	const query = `
	SELECT id, sku, name, category, stock, price
	FROM products
	WHERE is_active AND stock <= $1
	ORDER BY stock ASC, name
	LIMIT $2`

	rows, err := r.pool.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.ListLowStock: %w", err)
	}
	defer rows.Close()

	var out []repository.LowStockResult
	for rows.Next() {
		var row repository.LowStockResult
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.Category, &row.Stock, &row.Price); err != nil {
			return nil, fmt.Errorf("analytics.ListLowStock scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
