package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductUseCase() (*usecase.ProductUseCase, *memory.Store) {
	store := memory.NewStore()
	return usecase.NewProductUseCase(store.Products()), store
}

func TestProductUseCase_Create(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU:      " cafe-01 ",
		Barcode:  "7701234567890",
		Name:     "Café molido 500g",
		Category: "Despensa",
		Price:    decimal.RequireFromString("18500.456"),
		Stock:    12,
	})
	require.NoError(t, err)
	assert.Equal(t, "CAFE-01", p.SKU)
	assert.True(t, decimal.RequireFromString("18500.46").Equal(p.Price))
	assert.Equal(t, int64(12), p.Stock)
	assert.True(t, p.IsActive)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "CAFE-01", Name: "Otro", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	found, err := uc.GetByBarcode(ctx, "7701234567890")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)
}

func TestProductUseCase_CreateInvalido(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "A", Price: decimal.NewFromInt(1), Stock: -3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_UpdateNoTocaStock(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", Price: decimal.NewFromInt(4000), Stock: 7})
	require.NoError(t, err)

	name := "Arroz 1kg"
	price := decimal.NewFromInt(4200)
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Arroz 1kg", updated.Name)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, int64(7), updated.Stock)

	_, err = uc.Update(ctx, "no-existe", dto.UpdateProductRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_DeactivateYListado(t *testing.T) {
	uc, _ := newProductUseCase()
	ctx := context.Background()
	a, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "Arroz", Category: "Granos", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "Frijol", Category: "Granos", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "C", Name: "Leche", Category: "Lácteos", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)

	require.NoError(t, uc.Deactivate(ctx, a.ID))
	got, err := uc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := uc.List(ctx, dto.ProductListRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, active.Pagination.Total)

	granos, err := uc.List(ctx, dto.ProductListRequest{Category: "granos"})
	require.NoError(t, err)
	assert.Equal(t, 2, granos.Pagination.Total)

	search, err := uc.List(ctx, dto.ProductListRequest{Search: "lech"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "C", search.Items[0].SKU)

	categories, err := uc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Granos", "Lácteos"}, categories)
}
