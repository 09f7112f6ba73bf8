package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/dto"
)

// StatsHandler endpoints de solo lectura del tablero y reportes.
type StatsHandler struct {
	dashboard *appanalytics.DashboardUseCase
	reports   *appanalytics.ReportUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(dashboard *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase) *StatsHandler {
	return &StatsHandler{dashboard: dashboard, reports: reports}
}

// Dashboard devuelve totales de hoy, mes y año, conteos de productos y top 5 del mes.
// GET /api/stats/dashboard
//
// No requiere parámetros; las fechas se calculan en el servidor.
func (h *StatsHandler) Dashboard(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// SalesChart godoc
// @Summary      Serie de ventas
// @Tags         stats
// @Produce      json
// @Param        period  query  string  false  "week | month | year"  default(week)
// @Success      200  {object}  dto.SalesChartDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stats/sales-chart [get]
func (h *StatsHandler) SalesChart(c *fiber.Ctx) error {
	var in dto.ReportPeriodRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	out, err := h.reports.SalesChart(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CategorySales godoc
// @Summary      Ventas por categoría
// @Tags         stats
// @Produce      json
// @Param        period  query  string  false  "week | month | year"  default(month)
// @Success      200  {array}  dto.CategorySalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stats/category-sales [get]
func (h *StatsHandler) CategorySales(c *fiber.Ctx) error {
	var in dto.ReportPeriodRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	out, err := h.reports.CategorySales(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         stats
// @Produce      json
// @Param        period  query  string  false  "week | month | year"  default(month)
// @Param        limit   query  int     false  "Máximo de productos (1-100)"  default(10)
// @Success      200  {array}  dto.TopProductDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stats/top-products [get]
func (h *StatsHandler) TopProducts(c *fiber.Ctx) error {
	var in dto.ReportPeriodRequest
	if err := c.QueryParser(&in); err != nil {
		return badRequest(c, "INVALID_PARAMS", "parámetros de consulta inválidos")
	}
	out, err := h.reports.TopProducts(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         stats
// @Produce      json
// @Param        threshold  query  int  false  "Umbral de stock"  default(10)
// @Param        limit      query  int  false  "Máximo de productos"
// @Success      200  {array}  dto.LowStockProductDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stats/low-stock [get]
func (h *StatsHandler) LowStock(c *fiber.Ctx) error {
	in := dto.LowStockRequest{Limit: c.QueryInt("limit", 0)}
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "INVALID_PARAMS", "threshold debe ser un entero")
		}
		in.Threshold = &threshold
	}
	out, err := h.reports.LowStock(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
