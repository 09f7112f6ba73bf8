package sales_test

import (
	"context"
	"testing"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestUpdateSale_SoloNotas(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 1})

	updated, err := f.update.UpdateSale(context.Background(), sale.ID, dto.UpdateSaleRequest{Notes: ptr("entregar mañana")})
	require.NoError(t, err)
	assert.Equal(t, "entregar mañana", updated.Notes)
	assert.Equal(t, string(entity.SaleStatusCompleted), updated.Status)
}

func TestUpdateSale_MismoEstadoNoEsTransicion(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 1})

	updated, err := f.update.UpdateSale(context.Background(), sale.ID, dto.UpdateSaleRequest{
		Status: ptr("completed"),
		Notes:  ptr("ok"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", updated.Notes)
	assert.Equal(t, int64(4), f.stock(t, "A"))
}

func TestUpdateSale_CancelarVentaCanceladaEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 2})
	_, err := f.cancel.CancelSale(ctx, sale.ID)
	require.NoError(t, err)

	_, err = f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{
		Status: ptr("cancelled"),
		Notes:  ptr("x"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.query.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCancelled), got.Status)
	assert.Empty(t, got.Notes)
	assert.Equal(t, int64(5), f.stock(t, "A"))
}

func TestUpdateSale_PendienteACompletada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "10", 5)
	sale, err := f.create.CreateSale(ctx, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "A", Quantity: 1}},
		PaymentMethod: "cash",
		Status:        "pending",
	})
	require.NoError(t, err)

	updated, err := f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{Status: ptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCompleted), updated.Status)
	assert.Equal(t, int64(4), f.stock(t, "A"))

	pending, err := f.store.Events().CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)
}

func TestUpdateSale_CancelarRestauraStockYNotas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 3})

	updated, err := f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{
		Status: ptr("cancelled"),
		Notes:  ptr("cliente desistió"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.SaleStatusCancelled), updated.Status)
	assert.Equal(t, "cliente desistió", updated.Notes)
	assert.Equal(t, int64(5), f.stock(t, "A"))

	_, err = f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{Status: ptr("completed")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(5), f.stock(t, "A"))
}

func TestUpdateSale_TransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 1})

	_, err := f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{Status: ptr("pending"), Notes: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{Status: ptr("shipped")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.update.UpdateSale(ctx, sale.ID, dto.UpdateSaleRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.update.UpdateSale(ctx, "no-existe", dto.UpdateSaleRequest{Notes: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Las notas no se escribieron: el ámbito completo se abortó.
	got, err := f.query.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
}
