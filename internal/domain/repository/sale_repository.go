package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleFilter criterios del listado de ventas (orden: creación descendente).
type SaleFilter struct {
	Status        entity.SaleStatus
	StartDate     *time.Time
	EndDate       *time.Time
	CustomerPhone string
	Limit         int
	Offset        int
}

// SaleRepository libro de ventas: inserción única, lectura y cambios de estado/notas.
// Los Get* devuelven (nil, nil) cuando la venta no existe.
type SaleRepository interface {
	// Create inserta cabecera e ítems. domain.ErrDuplicate si el número de venta ya existe.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate lee la venta bloqueándola hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetBySaleNumber(ctx context.Context, saleNumber string) (*entity.Sale, error)
	// UpdateStatus cambia el estado solo si el actual es from; si no, domain.ErrConflict.
	UpdateStatus(ctx context.Context, id string, from, to entity.SaleStatus, at time.Time) error
	UpdateNotes(ctx context.Context, id, notes string, at time.Time) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
}

// SaleSequence reserva valores únicos para el número de venta (incremento atómico).
type SaleSequence interface {
	Next(ctx context.Context) (int64, error)
}
