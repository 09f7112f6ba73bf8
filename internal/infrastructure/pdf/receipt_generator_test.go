package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptGenerator_GeneraPDF(t *testing.T) {
	sale := &entity.Sale{
		ID:         "s1",
		SaleNumber: "SALE-000042",
		Items: []entity.SaleItem{
			{ProductID: "a", Quantity: 3, UnitPrice: decimal.NewFromInt(100), LineTotal: decimal.NewFromInt(300)},
			{ProductID: "borrado", Quantity: 1, UnitPrice: decimal.NewFromInt(50), LineTotal: decimal.NewFromInt(50)},
		},
		Subtotal:      decimal.NewFromInt(350),
		Tax:           decimal.RequireFromString("66.50"),
		Discount:      decimal.NewFromInt(16),
		Total:         decimal.RequireFromString("400.50"),
		PaymentMethod: entity.PaymentCard,
		CustomerName:  "Ana Gómez",
		CustomerPhone: "3001234567",
		Status:        entity.SaleStatusCompleted,
		Notes:         "Entregar en mostrador",
		CreatedAt:     time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC),
	}
	products := map[string]*entity.Product{
		"a": {ID: "a", SKU: "CAFE-01", Name: "Café molido"},
	}

	gen := pdf.NewReceiptGenerator("Tienda Central", "es-CO")
	out, err := gen.GenerateReceiptPDF(context.Background(), sale, products)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 1000)
}

func TestReceiptGenerator_LocaleInvalidoUsaEspanol(t *testing.T) {
	gen := pdf.NewReceiptGenerator("", "no-es-un-locale!!")
	out, err := gen.GenerateReceiptPDF(context.Background(), &entity.Sale{
		SaleNumber:    "SALE-000001",
		Subtotal:      decimal.Zero,
		Total:         decimal.Zero,
		PaymentMethod: entity.PaymentCash,
		Status:        entity.SaleStatusCancelled,
	}, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
