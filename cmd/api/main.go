package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-api/docs"
	appanalytics "github.com/jhoicas/pos-api/internal/application/analytics"
	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	infrakafka "github.com/jhoicas/pos-api/internal/infrastructure/kafka"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// version se inyecta con -ldflags "-X main.version=...".
var version = "dev"

// backend repositorios y alcance transaccional de un driver de almacenamiento.
type backend struct {
	runner    sales.TxRunner
	products  repository.ProductRepository
	sales     repository.SaleRepository
	events    repository.SaleEventRepository
	analytics repository.AnalyticsRepository
	pinger    httpRouter.Pinger
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("version", version).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.Telemetry, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	salesMetrics := metrics.NewSalesMetrics(registry)

	store, err := openBackend(ctx, cfg, salesMetrics, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	salesLog := log.Component("sales")
	numbering := sales.Numbering{Prefix: cfg.Sales.NumberPrefix, Width: cfg.Sales.NumberWidth}
	createSaleUC := sales.NewCreateSaleUseCase(store.runner, store.products, numbering, salesMetrics, salesLog)
	cancelSaleUC := sales.NewCancelSaleUseCase(store.runner, store.products, salesMetrics, salesLog)
	updateSaleUC := sales.NewUpdateSaleUseCase(store.runner, store.products, cancelSaleUC, salesMetrics)
	queryUC := sales.NewQueryUseCase(store.sales, store.products)

	// PDF: comprobante de venta con QR del número
	receiptGenerator := infrapdf.NewReceiptGenerator(cfg.App.Name, "es-CO")
	receiptUC := sales.NewReceiptUseCase(store.sales, store.products, receiptGenerator)

	threshold := int64(cfg.Sales.LowStockThreshold)
	dashboardUC := appanalytics.NewDashboardUseCase(store.analytics, threshold)
	reportUC := appanalytics.NewReportUseCase(store.analytics, threshold)

	// Outbox: Kafka si hay brokers, si no solo log
	var publisher events.Publisher = events.NewLogPublisher(log.Component("events"))
	if cfg.Kafka.Enabled() {
		kafkaPublisher := infrakafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kafkaPublisher
	}
	worker := events.NewOutboxWorker(store.events, publisher, events.WorkerOptions{
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
	}, salesMetrics, log.Component("outbox"))
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	app := httpRouter.NewApp(httpRouter.ServerConfig{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		CORSOrigins:  cfg.HTTP.CORSOrigins,
	}, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Store:       store.pinger,
		Gatherer:    registry,
		ProductUC:   usecase.NewProductUseCase(store.products),
		CreateSale:  createSaleUC,
		CancelSale:  cancelSaleUC,
		UpdateSale:  updateSaleUC,
		SaleQuery:   queryUC,
		Receipt:     receiptUC,
		DashboardUC: dashboardUC,
		ReportUC:    reportUC,
	}, log.Component("http"))

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Version = version
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "POS API",
		}))
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("worker de eventos no terminó a tiempo")
	}
	if err := shutdownTracer(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.Error().Err(err).Msg("apagado del tracer")
	}

	log.Info().Msg("aplicación detenida")
}

func openBackend(ctx context.Context, cfg *config.Config, m *metrics.SalesMetrics, log *logger.Logger) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			runner:    store,
			products:  store.Products(),
			sales:     store.Sales(),
			events:    store.Events(),
			analytics: store.Analytics(),
			pinger:    store,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Int("applied", applied).Msg("migraciones aplicadas")
	}
	return postgresBackend(pool, cfg, m), nil
}

func postgresBackend(pool *pgxpool.Pool, cfg *config.Config, m *metrics.SalesMetrics) *backend {
	return &backend{
		runner: postgres.NewTxRunner(pool, postgres.TxOptions{
			Timeout:     cfg.Store.TxTimeout,
			MaxAttempts: cfg.Store.TxMaxAttempts,
			Metrics:     m,
		}),
		products:  postgres.NewProductRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		events:    postgres.NewSaleEventRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		pinger:    pool,
		close:     pool.Close,
	}
}
