package postgres_test

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestPool requiere POS_TEST_DATABASE_URL; sin ella los tests de integración se omiten.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("POS_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = postgres.Migrate(ctx, pool)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `TRUNCATE sale_events, sale_items, sales, products`)
	require.NoError(t, err)
	return pool
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, name string, price int64, stock int64) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       "IT-" + uuid.New().String()[:8],
		Name:      name,
		Category:  "Pruebas",
		Price:     decimal.NewFromInt(price),
		Stock:     stock,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, postgres.NewProductRepository(pool).Create(context.Background(), p))
	return p
}

func newUseCases(pool *pgxpool.Pool) (*sales.CreateSaleUseCase, *sales.CancelSaleUseCase) {
	runner := postgres.NewTxRunner(pool, postgres.TxOptions{Timeout: 5 * time.Second, MaxAttempts: 3})
	products := postgres.NewProductRepository(pool)
	create := sales.NewCreateSaleUseCase(runner, products, sales.Numbering{Prefix: "SALE", Width: 6}, nil, zerolog.Nop())
	cancel := sales.NewCancelSaleUseCase(runner, products, nil, zerolog.Nop())
	return create, cancel
}

func TestPostgres_CrearYCancelarVenta(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	a := seedProduct(t, pool, "A", 100, 5)
	b := seedProduct(t, pool, "B", 50, 2)
	create, cancel := newUseCases(pool)

	sale, err := create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(350).Equal(sale.Total))

	products := postgres.NewProductRepository(pool)
	got, err := products.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Stock)

	stored, err := postgres.NewSaleRepository(pool).GetBySaleNumber(ctx, sale.SaleNumber)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, a.ID, stored.Items[0].ProductID)

	_, err = cancel.CancelSale(ctx, sale.ID)
	require.NoError(t, err)
	got, err = products.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)

	_, err = cancel.CancelSale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	pending, err := postgres.NewSaleEventRepository(pool).CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestPostgres_RechazoAtomico(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	a := seedProduct(t, pool, "A", 100, 5)
	b := seedProduct(t, pool, "B", 50, 2)
	create, _ := newUseCases(pool)

	_, err := create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: a.ID, Quantity: 3}, {ProductID: b.ID, Quantity: 5}},
		PaymentMethod: "card",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := postgres.NewProductRepository(pool).GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)

	_, total, err := postgres.NewSaleRepository(pool).List(ctx, repository.SaleFilter{Limit: 100})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPostgres_IDNoUUIDEsNoEncontrado(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	a := seedProduct(t, pool, "A", 100, 5)
	create, cancel := newUseCases(pool)

	_, err := create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: a.ID, Quantity: 1}, {ProductID: "abc", Quantity: 1}},
		PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTransientStore)

	products := postgres.NewProductRepository(pool)
	got, err := products.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = products.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)

	saleRepo := postgres.NewSaleRepository(pool)
	sale, err := saleRepo.GetByID(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, sale)
	assert.ErrorIs(t, saleRepo.UpdateNotes(ctx, "abc", "x", time.Now()), domain.ErrNotFound)

	_, err = cancel.CancelSale(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_SinSobreventaConcurrente(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	p := seedProduct(t, pool, "Escaso", 10, 10)
	create, _ := newUseCases(pool)

	var ok atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := create.CreateSale(ctx, dto.CreateSaleRequest{
				Items:         []dto.SaleItemRequest{{ProductID: p.ID, Quantity: 1}},
				PaymentMethod: "cash",
			})
			if err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok.Load())
	got, err := postgres.NewProductRepository(pool).GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Stock)
}
