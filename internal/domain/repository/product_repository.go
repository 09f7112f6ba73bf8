package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ProductFilter criterios de listado del catálogo.
type ProductFilter struct {
	Category   string
	Search     string // coincide con nombre, SKU o código de barras
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los Get* devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto bloqueándolo hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*entity.Product, error)
	IsActive(ctx context.Context, id string) (bool, error)
	// Update persiste campos descriptivos, precio y activación. Nunca toca el stock.
	Update(ctx context.Context, product *entity.Product) error
	// AdjustStock suma delta al stock solo si el resultado queda >= minResulting.
	// Devuelve el stock resultante, domain.ErrNotFound si el producto no existe o
	// domain.ErrInsufficientStock si la condición no se cumple.
	AdjustStock(ctx context.Context, id string, delta, minResulting int64) (int64, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListCategories(ctx context.Context) ([]string, error)
}
