package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Store       Pinger
	Gatherer    prometheus.Gatherer

	ProductUC   *usecase.ProductUseCase
	CreateSale  *sales.CreateSaleUseCase
	CancelSale  *sales.CancelSaleUseCase
	UpdateSale  *sales.UpdateSaleUseCase
	SaleQuery   *sales.QueryUseCase
	Receipt     *sales.ReceiptUseCase
	DashboardUC *appanalytics.DashboardUseCase
	ReportUC    *appanalytics.ReportUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.ServiceName, deps.Store))
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/categories", productHandler.Categories)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Deactivate)

	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.CancelSale, deps.UpdateSale, deps.SaleQuery, deps.Receipt)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/number/:number", saleHandler.GetByNumber)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Patch("/:id", saleHandler.Update)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	stats := api.Group("/stats")
	statsHandler := NewStatsHandler(deps.DashboardUC, deps.ReportUC)
	stats.Get("/dashboard", statsHandler.Dashboard)
	stats.Get("/sales-chart", statsHandler.SalesChart)
	stats.Get("/category-sales", statsHandler.CategorySales)
	stats.Get("/top-products", statsHandler.TopProducts)
	stats.Get("/low-stock", statsHandler.LowStock)
}
