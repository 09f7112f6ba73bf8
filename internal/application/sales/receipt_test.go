package sales_test

import (
	"context"
	"testing"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceiptGenerator struct {
	sale     *entity.Sale
	products map[string]*entity.Product
}

func (g *fakeReceiptGenerator) GenerateReceiptPDF(_ context.Context, sale *entity.Sale, products map[string]*entity.Product) ([]byte, error) {
	g.sale = sale
	g.products = products
	return []byte("%PDF-fake"), nil
}

func TestReceipt_Descarga(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "A", "10", 5)
	sale := createSale(t, f, dto.SaleItemRequest{ProductID: "A", Quantity: 2})

	gen := &fakeReceiptGenerator{}
	uc := sales.NewReceiptUseCase(f.store.Sales(), f.store.Products(), gen)

	pdf, name, err := uc.DownloadReceipt(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "comprobante_SALE-000001.pdf", name)
	assert.Equal(t, "%PDF-fake", string(pdf))
	require.NotNil(t, gen.sale)
	assert.Equal(t, sale.SaleNumber, gen.sale.SaleNumber)
	assert.Contains(t, gen.products, "A")

	_, _, err = uc.DownloadReceipt(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
