// Package analytics contiene los casos de uso de reportes de ventas y el dashboard.
// Todas las consultas son de solo lectura y cuentan únicamente ventas completadas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen del día, mes y año en curso.
type DashboardUseCase struct {
	analyticsRepo     repository.AnalyticsRepository
	lowStockThreshold int64
	now               func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, lowStockThreshold int64) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, lowStockThreshold: lowStockThreshold, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cinco consultas en paralelo:
//  1. GetPeriodStats(hoy)
//  2. GetPeriodStats(mes)
//  3. GetPeriodStats(año)
//  4. CountProducts(umbral)
//  5. GetTopProducts(mes, top 5)
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	end := todayStart.AddDate(0, 0, 1)

	type statsResult struct {
		stats repository.PeriodStats
		err   error
	}
	type countsResult struct {
		counts repository.ProductCounts
		err    error
	}
	type topResult struct {
		rows []repository.TopProductResult
		err  error
	}

	todayCh := make(chan statsResult, 1)
	monthCh := make(chan statsResult, 1)
	yearCh := make(chan statsResult, 1)
	countsCh := make(chan countsResult, 1)
	topCh := make(chan topResult, 1)

	periodStats := func(start time.Time, out chan<- statsResult) {
		s, err := uc.analyticsRepo.GetPeriodStats(ctx, start, end)
		out <- statsResult{s, err}
	}
	go periodStats(todayStart, todayCh)
	go periodStats(monthStart, monthCh)
	go periodStats(yearStart, yearCh)
	go func() {
		c, err := uc.analyticsRepo.CountProducts(ctx, uc.lowStockThreshold)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		rows, err := uc.analyticsRepo.GetTopProducts(ctx, monthStart, end, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()

	today, month, year := <-todayCh, <-monthCh, <-yearCh
	counts, top := <-countsCh, <-topCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if year.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del año: %w", year.err)
	}
	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteo de productos: %w", counts.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}

	return &dto.DashboardSummaryDTO{
		Today:       toPeriodStatsDTO(today.stats),
		Monthly:     toPeriodStatsDTO(month.stats),
		Yearly:      toPeriodStatsDTO(year.stats),
		Products:    dto.ProductCountsDTO{Total: counts.counts.Active, LowStock: counts.counts.LowStock},
		TopProducts: toTopProductDTOs(top.rows),
		DateLabel:   monthLabel(now),
	}, nil
}

func toPeriodStatsDTO(s repository.PeriodStats) dto.PeriodStatsDTO {
	return dto.PeriodStatsDTO{
		TotalSales:   s.TotalSales,
		TotalRevenue: s.TotalRevenue.Round(2),
		TotalItems:   s.TotalItems,
	}
}

func toTopProductDTOs(rows []repository.TopProductResult) []dto.TopProductDTO {
	out := make([]dto.TopProductDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductDTO{
			ProductID:     r.ProductID,
			SKU:           r.SKU,
			Name:          r.Name,
			TotalQuantity: r.TotalQuantity,
			TotalRevenue:  r.TotalRevenue.Round(2),
		})
	}
	return out
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

