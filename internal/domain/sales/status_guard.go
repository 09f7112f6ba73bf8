package sales

import (
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// transitions máquina de estados de la venta. cancelled es terminal.
var transitions = map[entity.SaleStatus][]entity.SaleStatus{
	entity.SaleStatusPending:   {entity.SaleStatusCompleted, entity.SaleStatusCancelled},
	entity.SaleStatusCompleted: {entity.SaleStatusCancelled},
	entity.SaleStatusCancelled: nil,
}

// CanTransition indica si from -> to es una transición legal.
func CanTransition(from, to entity.SaleStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition valida la transición y devuelve ErrInvalidInput para estados desconocidos
// o ErrConflict si la transición no está permitida desde el estado actual.
// Todo camino que cambie el estado de una venta pasa por aquí.
func CheckTransition(from, to entity.SaleStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: transición %s -> %s no permitida", domain.ErrConflict, from, to)
	}
	return nil
}

// InitialStatus valida el estado solicitado al crear la venta (vacío = completed).
func InitialStatus(requested entity.SaleStatus) (entity.SaleStatus, error) {
	switch requested {
	case "":
		return entity.SaleStatusCompleted, nil
	case entity.SaleStatusPending, entity.SaleStatusCompleted:
		return requested, nil
	}
	return "", fmt.Errorf("%w: una venta no puede crearse con estado %q", domain.ErrInvalidInput, requested)
}
