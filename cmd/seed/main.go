// seed carga un catálogo de ejemplo (15 productos) y 3 ventas registradas a través
// de los casos de uso, de modo que el stock y la numeración quedan consistentes.
//
// Uso: go run ./cmd/seed [--reset]
// Con --reset vacía productos, ventas y eventos antes de insertar.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/shopspring/decimal"
)

var sampleProducts = []dto.CreateProductRequest{
	{Name: "Samsung Galaxy S23", Description: "Smartphone insignia de Samsung", Price: decimal.NewFromInt(65000), Category: "Electronics", Stock: 25, SKU: "SAM-S23-001", Barcode: "1234567890123"},
	{Name: "iPhone 14 Pro", Description: "Apple iPhone 14 Pro 128GB", Price: decimal.NewFromInt(120000), Category: "Electronics", Stock: 15, SKU: "APL-14P-001", Barcode: "1234567890124"},
	{Name: "Dell XPS 13", Description: "Portátil Dell XPS 13 i7 16GB RAM", Price: decimal.NewFromInt(95000), Category: "Computers", Stock: 8, SKU: "DEL-XPS-001", Barcode: "1234567890125"},
	{Name: "MacBook Air M2", Description: "Apple MacBook Air con chip M2", Price: decimal.NewFromInt(115000), Category: "Computers", Stock: 5, SKU: "APL-MBA-001", Barcode: "1234567890126"},
	{Name: "Sony WH-1000XM4", Description: "Audífonos inalámbricos con cancelación de ruido", Price: decimal.NewFromInt(25000), Category: "Audio", Stock: 30, SKU: "SON-WH4-001", Barcode: "1234567890127"},
	{Name: "iPad Air 5th Gen", Description: "Apple iPad Air con chip M1", Price: decimal.NewFromInt(55000), Category: "Tablets", Stock: 12, SKU: "APL-IPA-001", Barcode: "1234567890128"},
	{Name: "Canon EOS R6", Description: "Cámara mirrorless profesional", Price: decimal.NewFromInt(180000), Category: "Cameras", Stock: 3, SKU: "CAN-R6-001", Barcode: "1234567890129"},
	{Name: "Nintendo Switch OLED", Description: "Consola Nintendo Switch OLED", Price: decimal.NewFromInt(35000), Category: "Gaming", Stock: 18, SKU: "NIN-SWO-001", Barcode: "1234567890130"},
	{Name: "AirPods Pro 2nd Gen", Description: "Apple AirPods Pro con audio espacial", Price: decimal.NewFromInt(22000), Category: "Audio", Stock: 40, SKU: "APL-APP-001", Barcode: "1234567890131"},
	{Name: `Samsung 55" QLED TV`, Description: "Smart TV QLED 4K de 55 pulgadas", Price: decimal.NewFromInt(85000), Category: "Electronics", Stock: 6, SKU: "SAM-Q55-001", Barcode: "1234567890132"},
	{Name: "Logitech MX Master 3S", Description: "Mouse inalámbrico avanzado", Price: decimal.NewFromInt(8500), Category: "Accessories", Stock: 50, SKU: "LOG-MX3-001", Barcode: "1234567890133"},
	{Name: "Mechanical Keyboard RGB", Description: "Teclado mecánico gamer retroiluminado", Price: decimal.NewFromInt(12000), Category: "Accessories", Stock: 35, SKU: "KEY-RGB-001", Barcode: "1234567890134"},
	{Name: "Portable SSD 1TB", Description: "Almacenamiento SSD portátil de alta velocidad", Price: decimal.NewFromInt(15000), Category: "Storage", Stock: 20, SKU: "SSD-1TB-001", Barcode: "1234567890135"},
	{Name: "Wireless Charger 15W", Description: "Base de carga inalámbrica rápida", Price: decimal.NewFromInt(3500), Category: "Accessories", Stock: 60, SKU: "CHR-15W-001", Barcode: "1234567890136"},
	{Name: "Bluetooth Speaker", Description: "Parlante bluetooth resistente al agua", Price: decimal.NewFromInt(8000), Category: "Audio", Stock: 25, SKU: "SPK-BT-001", Barcode: "1234567890137"},
}

type sampleLine struct {
	sku      string
	quantity int64
}

type sampleSale struct {
	lines    []sampleLine
	discount int64
	payment  string
	customer string
	phone    string
	notes    string
}

var sampleSales = []sampleSale{
	{lines: []sampleLine{{"SAM-S23-001", 2}, {"SON-WH4-001", 1}}, discount: 5000, payment: "card", customer: "John Doe", phone: "9876543210", notes: "Entrega express solicitada"},
	{lines: []sampleLine{{"APL-14P-001", 1}, {"APL-APP-001", 1}}, payment: "upi", customer: "Jane Smith", phone: "9876543211"},
	{lines: []sampleLine{{"DEL-XPS-001", 1}}, discount: 2000, payment: "cash", customer: "Bob Johnson", phone: "9876543212", notes: "Compra corporativa"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if _, err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if slices.Contains(os.Args[1:], "--reset") {
		if err := reset(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("vaciar tablas")
		}
		log.Info().Msg("tablas vaciadas")
	}

	productRepo := postgres.NewProductRepository(pool)
	productUC := usecase.NewProductUseCase(productRepo)
	runner := postgres.NewTxRunner(pool, postgres.TxOptions{Timeout: cfg.Store.TxTimeout, MaxAttempts: cfg.Store.TxMaxAttempts})
	createSale := sales.NewCreateSaleUseCase(
		runner, productRepo,
		sales.Numbering{Prefix: cfg.Sales.NumberPrefix, Width: cfg.Sales.NumberWidth},
		nil, log.Component("sales"),
	)

	ids := make(map[string]string, len(sampleProducts))
	categories := make(map[string]struct{})
	for _, in := range sampleProducts {
		categories[in.Category] = struct{}{}
		out, err := productUC.Create(ctx, in)
		if errors.Is(err, domain.ErrDuplicate) {
			existing, getErr := productRepo.GetBySKU(ctx, in.SKU)
			if getErr != nil || existing == nil {
				log.Fatal().Err(getErr).Str("sku", in.SKU).Msg("producto duplicado sin registro")
			}
			ids[in.SKU] = existing.ID
			log.Warn().Str("sku", in.SKU).Msg("producto ya existe, se reutiliza")
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", in.SKU).Msg("crear producto")
		}
		ids[in.SKU] = out.ID
	}
	log.Info().Int("products", len(ids)).Msg("catálogo cargado")

	created := 0
	for _, s := range sampleSales {
		req := dto.CreateSaleRequest{
			PaymentMethod: s.payment,
			Discount:      decimal.NewFromInt(s.discount),
			CustomerName:  s.customer,
			CustomerPhone: s.phone,
			Notes:         s.notes,
		}
		for _, l := range s.lines {
			req.Items = append(req.Items, dto.SaleItemRequest{ProductID: ids[l.sku], Quantity: l.quantity})
		}
		sale, err := createSale.CreateSale(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("customer", s.customer).Msg("crear venta de ejemplo")
		}
		created++
		log.Info().Str("sale_number", sale.SaleNumber).Str("total", sale.Total.StringFixed(2)).Msg("venta creada")
	}

	log.Info().
		Int("products", len(ids)).
		Int("sales", created).
		Int("categories", len(categories)).
		Msg("seed completado")
}

func reset(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `TRUNCATE sale_events, sale_items, sales, products`)
	return err
}
