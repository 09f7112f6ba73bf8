package sales

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de un único ámbito atómico con repositorios atados a él.
// Si fn devuelve error nada de lo escrito es visible para otras operaciones.
// Las fallas de timeout o contención se devuelven envueltas en domain.ErrTransientStore.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		sequence repository.SaleSequence,
		eventRepo repository.SaleEventRepository,
	) error) error
}

// ReceiptGenerator genera la representación PDF de una venta.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale, products map[string]*entity.Product) ([]byte, error)
}

// Numbering formato del número de venta.
type Numbering struct {
	Prefix string
	Width  int
}
