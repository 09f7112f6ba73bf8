package sales_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale_DescuentaStockYNumera(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "100", 5)
	f.addProduct(t, "B", "50", 2)

	sale, err := f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 3}, {ProductID: "B", Quantity: 1}},
		PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "SALE-000001", sale.SaleNumber)
	assert.Equal(t, string(entity.SaleStatusCompleted), sale.Status)
	assert.True(t, dec("350").Equal(sale.Subtotal))
	assert.True(t, dec("350").Equal(sale.Total))
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "A", sale.Items[0].ProductID)
	assert.True(t, dec("300").Equal(sale.Items[0].LineTotal))
	assert.Equal(t, "Producto A", sale.Items[0].ProductName)

	assert.Equal(t, int64(2), f.stock(t, "A"))
	assert.Equal(t, int64(1), f.stock(t, "B"))

	pending, err := f.store.Events().CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestCreateSale_ImpuestoYDescuento(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "19.99", 10)

	sale, err := f.create.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 3}},
		PaymentMethod: "CARD",
		Tax:           dec("11.394"),
		Discount:      dec("5"),
		Status:        "pending",
	})
	require.NoError(t, err)

	assert.True(t, dec("59.97").Equal(sale.Subtotal))
	assert.True(t, dec("11.39").Equal(sale.Tax))
	assert.True(t, dec("66.36").Equal(sale.Total))
	assert.Equal(t, "card", sale.PaymentMethod)
	assert.Equal(t, string(entity.SaleStatusPending), sale.Status)
}

func TestCreateSale_RechazoEsAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "100", 5)
	f.addProduct(t, "B", "50", 2)

	_, err := f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 3}, {ProductID: "B", Quantity: 5}},
		PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), f.stock(t, "A"))
	assert.Equal(t, int64(2), f.stock(t, "B"))
	list, err := f.query.List(ctx, dto.SaleListRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Pagination.Total)
	pending, err := f.store.Events().CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestCreateSale_MismoProductoEnVariasLineas(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 4)

	_, err := f.create.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 3}, {ProductID: "A", Quantity: 2}},
		PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(4), f.stock(t, "A"))
}

func TestCreateSale_ProductoInexistenteOInactivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "10", 4)
	f.addProduct(t, "X", "10", 4)
	f.deactivate(t, "X")

	_, err := f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}, {ProductID: "nope", Quantity: 1}},
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "X", Quantity: 1}},
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, domain.ErrInactiveProduct)
	assert.Equal(t, int64(4), f.stock(t, "A"))
	assert.Equal(t, int64(4), f.stock(t, "X"))
}

func TestCreateSale_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 4)

	item := []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}}
	cases := []struct {
		name string
		in   dto.CreateSaleRequest
	}{
		{"sin ítems", dto.CreateSaleRequest{PaymentMethod: "cash"}},
		{"cantidad cero", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "A", Quantity: 0}}, PaymentMethod: "cash"}},
		{"cantidad negativa", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "A", Quantity: -1}}, PaymentMethod: "cash"}},
		{"sin producto", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{Quantity: 1}}, PaymentMethod: "cash"}},
		{"método inválido", dto.CreateSaleRequest{Items: item, PaymentMethod: "cheque"}},
		{"sin método", dto.CreateSaleRequest{Items: item}},
		{"impuesto negativo", dto.CreateSaleRequest{Items: item, PaymentMethod: "cash", Tax: dec("-1")}},
		{"total negativo", dto.CreateSaleRequest{Items: item, PaymentMethod: "cash", Discount: dec("10.01")}},
		{"creada cancelada", dto.CreateSaleRequest{Items: item, PaymentMethod: "cash", Status: "cancelled"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.create.CreateSale(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(4), f.stock(t, "A"))
}

func TestCreateSale_DescuentoIgualAlSubtotal(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 4)

	sale, err := f.create.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}},
		PaymentMethod: "upi",
		Discount:      dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.IsZero())
}

func TestCreateSale_ConcurrenteSinSobreventa(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 10)

	var ok, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.CreateSale(context.Background(), dto.CreateSaleRequest{
				Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}},
				PaymentMethod: "cash",
			})
			if err == nil {
				ok.Add(1)
				return
			}
			if assert.ErrorIs(t, err, domain.ErrInsufficientStock) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), ok.Load())
	assert.Equal(t, int64(40), rejected.Load())
	assert.Zero(t, f.stock(t, "A"))
}

func TestCreateSale_NumerosUnicosBajoConcurrencia(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "1", 1000)

	var (
		mu      sync.Mutex
		numbers = make(map[string]struct{}, 1000)
		wg      sync.WaitGroup
	)
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := f.create.CreateSale(context.Background(), dto.CreateSaleRequest{
				Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}},
				PaymentMethod: "cash",
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[sale.SaleNumber] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, 1000)
	_, ok := numbers[fmt.Sprintf("SALE-%06d", 1000)]
	assert.True(t, ok)
	assert.Zero(t, f.stock(t, "A"))
}

func TestCreateSale_ContextoCanceladoEsTransitorio(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}}, PaymentMethod: "cash",
	})
	require.ErrorIs(t, err, domain.ErrTransientStore)
	assert.True(t, domain.IsRetryable(err))
	assert.Equal(t, int64(5), f.stock(t, "A"))
}
