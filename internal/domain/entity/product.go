package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo con su contador de stock.
// El stock solo lo modifican la creación y la cancelación de ventas.
type Product struct {
	ID          string
	SKU         string // único global
	Barcode     string // opcional, único si está presente
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal // precio de venta vigente
	Stock       int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock indica si hay al menos qty unidades disponibles.
func (p *Product) HasStock(qty int64) bool {
	return p.Stock >= qty
}
