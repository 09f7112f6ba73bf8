package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepository)(nil)

// UncategorizedLabel categoría usada para productos sin categoría.
const UncategorizedLabel = "Sin categoría"

// AnalyticsRepository reportes calculados sobre el estado en memoria (solo lectura).
type AnalyticsRepository struct {
	s *Store
}

// completedIn ventas completadas en [start, end). Se llama con el lock de lectura tomado.
func (r *AnalyticsRepository) completedIn(start, end time.Time) []*entity.Sale {
	var out []*entity.Sale
	for _, sale := range r.s.sales {
		if sale.Status != entity.SaleStatusCompleted {
			continue
		}
		if sale.CreatedAt.Before(start) || !sale.CreatedAt.Before(end) {
			continue
		}
		out = append(out, sale)
	}
	return out
}

func (r *AnalyticsRepository) GetPeriodStats(_ context.Context, start, end time.Time) (repository.PeriodStats, error) {
	stats := repository.PeriodStats{TotalRevenue: decimal.Zero}
	r.s.read(nil, func() {
		for _, sale := range r.completedIn(start, end) {
			stats.TotalSales++
			stats.TotalRevenue = stats.TotalRevenue.Add(sale.Total)
			stats.TotalItems += sale.TotalQuantity()
		}
	})
	return stats, nil
}

func (r *AnalyticsRepository) GetTopProducts(_ context.Context, start, end time.Time, limit int) ([]repository.TopProductResult, error) {
	byProduct := make(map[string]*repository.TopProductResult)
	r.s.read(nil, func() {
		for _, sale := range r.completedIn(start, end) {
			for _, it := range sale.Items {
				row, ok := byProduct[it.ProductID]
				if !ok {
					row = &repository.TopProductResult{ProductID: it.ProductID, TotalRevenue: decimal.Zero}
					if p, found := r.s.products[it.ProductID]; found {
						row.SKU = p.SKU
						row.Name = p.Name
					}
					byProduct[it.ProductID] = row
				}
				row.TotalQuantity += it.Quantity
				row.TotalRevenue = row.TotalRevenue.Add(it.LineTotal)
			}
		}
	})
	out := make([]repository.TopProductResult, 0, len(byProduct))
	for _, row := range byProduct {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
			return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
		}
		return out[i].ProductID < out[j].ProductID
	})
	return paginate(out, limit, 0), nil
}

func (r *AnalyticsRepository) GetSalesSeries(_ context.Context, start, end time.Time, g repository.Granularity) ([]repository.SalesBucketResult, error) {
	buckets := make(map[time.Time]*repository.SalesBucketResult)
	r.s.read(nil, func() {
		for _, sale := range r.completedIn(start, end) {
			key := truncate(sale.CreatedAt.In(start.Location()), g)
			b, ok := buckets[key]
			if !ok {
				b = &repository.SalesBucketResult{Period: key, TotalRevenue: decimal.Zero}
				buckets[key] = b
			}
			b.TotalSales++
			b.TotalRevenue = b.TotalRevenue.Add(sale.Total)
		}
	})
	out := make([]repository.SalesBucketResult, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out, nil
}

func truncate(t time.Time, g repository.Granularity) time.Time {
	if g == repository.GranularityMonth {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (r *AnalyticsRepository) GetCategorySales(_ context.Context, start, end time.Time) ([]repository.CategorySalesResult, error) {
	byCategory := make(map[string]*repository.CategorySalesResult)
	salesPerCategory := make(map[string]map[string]struct{})
	r.s.read(nil, func() {
		for _, sale := range r.completedIn(start, end) {
			for _, it := range sale.Items {
				category := UncategorizedLabel
				if p, ok := r.s.products[it.ProductID]; ok && p.Category != "" {
					category = p.Category
				}
				row, ok := byCategory[category]
				if !ok {
					row = &repository.CategorySalesResult{Category: category, TotalRevenue: decimal.Zero}
					byCategory[category] = row
					salesPerCategory[category] = make(map[string]struct{})
				}
				row.TotalQuantity += it.Quantity
				row.TotalRevenue = row.TotalRevenue.Add(it.LineTotal)
				salesPerCategory[category][sale.ID] = struct{}{}
			}
		}
	})
	out := make([]repository.CategorySalesResult, 0, len(byCategory))
	for category, row := range byCategory {
		row.SalesCount = int64(len(salesPerCategory[category]))
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalRevenue.Equal(out[j].TotalRevenue) {
			return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (r *AnalyticsRepository) CountProducts(_ context.Context, lowStockThreshold int64) (repository.ProductCounts, error) {
	var counts repository.ProductCounts
	r.s.read(nil, func() {
		for _, p := range r.s.products {
			if !p.IsActive {
				continue
			}
			counts.Active++
			if p.Stock <= lowStockThreshold {
				counts.LowStock++
			}
		}
	})
	return counts, nil
}

func (r *AnalyticsRepository) ListLowStock(_ context.Context, threshold int64, limit int) ([]repository.LowStockResult, error) {
	var out []repository.LowStockResult
	r.s.read(nil, func() {
		for _, p := range r.s.products {
			if !p.IsActive || p.Stock > threshold {
				continue
			}
			out = append(out, repository.LowStockResult{
				ProductID: p.ID,
				SKU:       p.SKU,
				Name:      p.Name,
				Category:  p.Category,
				Stock:     p.Stock,
				Price:     p.Price,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return paginate(out, limit, 0), nil
}
