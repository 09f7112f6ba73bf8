package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Períodos de reporte.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

const (
	defaultTopN          = 10
	maxTopN              = 100
	defaultLowStockLimit = 200
)

// ReportUseCase reportes de ventas por período y alertas de stock.
type ReportUseCase struct {
	analyticsRepo     repository.AnalyticsRepository
	lowStockThreshold int64
	now               func() time.Time
}

// NewReportUseCase construye el caso de uso. lowStockThreshold es el umbral por defecto de LowStock.
func NewReportUseCase(analyticsRepo repository.AnalyticsRepository, lowStockThreshold int64) *ReportUseCase {
	return &ReportUseCase{analyticsRepo: analyticsRepo, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// periodStart inicio del período relativo a now. La gráfica mensual abarca también el mes anterior.
//   - week:  últimos 7 días
//   - month: primer día del mes (chart: primer día del mes anterior)
//   - year:  1 de enero
func periodStart(period string, now time.Time, chart bool) (time.Time, error) {
	switch period {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if chart {
			start = start.AddDate(0, -1, 0)
		}
		return start, nil
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%w: período %q (week|month|year)", domain.ErrInvalidInput, period)
}

func normalizePeriod(p, def string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return def
	}
	return p
}

// SalesChart serie de ventas completadas: por día (week, month) o por mes (year).
func (uc *ReportUseCase) SalesChart(ctx context.Context, in dto.ReportPeriodRequest) (*dto.SalesChartDTO, error) {
	period := normalizePeriod(in.Period, PeriodWeek)
	now := uc.now()
	start, err := periodStart(period, now, true)
	if err != nil {
		return nil, err
	}
	granularity, layout := repository.GranularityDay, "2006-01-02"
	if period == PeriodYear {
		granularity, layout = repository.GranularityMonth, "2006-01"
	}

	rows, err := uc.analyticsRepo.GetSalesSeries(ctx, start, now, granularity)
	if err != nil {
		return nil, fmt.Errorf("reporte: serie de ventas: %w", err)
	}
	points := make([]dto.SalesChartPointDTO, 0, len(rows))
	for _, r := range rows {
		points = append(points, dto.SalesChartPointDTO{
			Period:       r.Period,
			Label:        r.Period.Format(layout),
			TotalSales:   r.TotalSales,
			TotalRevenue: r.TotalRevenue.Round(2),
		})
	}
	return &dto.SalesChartDTO{Period: period, Granularity: string(granularity), From: start, Points: points}, nil
}

// CategorySales ventas por categoría del período, por ingreso descendente.
func (uc *ReportUseCase) CategorySales(ctx context.Context, in dto.ReportPeriodRequest) ([]dto.CategorySalesDTO, error) {
	now := uc.now()
	start, err := periodStart(normalizePeriod(in.Period, PeriodMonth), now, false)
	if err != nil {
		return nil, err
	}
	rows, err := uc.analyticsRepo.GetCategorySales(ctx, start, now)
	if err != nil {
		return nil, fmt.Errorf("reporte: ventas por categoría: %w", err)
	}
	out := make([]dto.CategorySalesDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CategorySalesDTO{
			Category:      r.Category,
			TotalQuantity: r.TotalQuantity,
			TotalRevenue:  r.TotalRevenue.Round(2),
			SalesCount:    r.SalesCount,
		})
	}
	return out, nil
}

// TopProducts productos más vendidos por cantidad en el período.
func (uc *ReportUseCase) TopProducts(ctx context.Context, in dto.ReportPeriodRequest) ([]dto.TopProductDTO, error) {
	now := uc.now()
	start, err := periodStart(normalizePeriod(in.Period, PeriodMonth), now, false)
	if err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultTopN
	}
	if limit > maxTopN {
		limit = maxTopN
	}
	rows, err := uc.analyticsRepo.GetTopProducts(ctx, start, now, limit)
	if err != nil {
		return nil, fmt.Errorf("reporte: top productos: %w", err)
	}
	return toTopProductDTOs(rows), nil
}

// LowStock productos activos con stock <= umbral, por stock ascendente.
func (uc *ReportUseCase) LowStock(ctx context.Context, in dto.LowStockRequest) ([]dto.LowStockProductDTO, error) {
	threshold := uc.lowStockThreshold
	if in.Threshold != nil {
		if *in.Threshold < 0 {
			return nil, fmt.Errorf("%w: threshold no puede ser negativo", domain.ErrInvalidInput)
		}
		threshold = *in.Threshold
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLowStockLimit
	}
	rows, err := uc.analyticsRepo.ListLowStock(ctx, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("reporte: stock bajo: %w", err)
	}
	out := make([]dto.LowStockProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockProductDTO{
			ProductID: r.ProductID,
			SKU:       r.SKU,
			Name:      r.Name,
			Category:  r.Category,
			Stock:     r.Stock,
			Price:     r.Price,
		})
	}
	return out, nil
}
