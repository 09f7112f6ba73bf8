package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepository)(nil)

// SaleRepository implementación en memoria del libro de ventas. Guarda copias: los ítems
// no pueden mutarse desde fuera.
type SaleRepository struct {
	s  *Store
	tx *txScope
}

// Create inserta la venta. ErrDuplicate si el ID o el número ya existen.
func (r *SaleRepository) Create(_ context.Context, sale *entity.Sale) error {
	var err error
	r.s.write(r.tx, func() {
		if _, ok := r.s.sales[sale.ID]; ok {
			err = fmt.Errorf("%w: venta %s", domain.ErrDuplicate, sale.ID)
			return
		}
		if _, ok := r.s.byNumber[sale.SaleNumber]; ok {
			err = fmt.Errorf("%w: número de venta %s", domain.ErrDuplicate, sale.SaleNumber)
			return
		}
		setWithUndo(r.tx, r.s.byNumber, sale.SaleNumber, sale.ID)
		setWithUndo(r.tx, r.s.sales, sale.ID, sale.Clone())
	})
	return err
}

func (r *SaleRepository) get(id string) *entity.Sale {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil
	}
	return sale.Clone()
}

// GetByID devuelve una copia o nil.
func (r *SaleRepository) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(r.tx, func() { out = r.get(id) })
	return out, nil
}

// GetForUpdate dentro de un ámbito el lock exclusivo del store ya protege la venta.
func (r *SaleRepository) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

// GetBySaleNumber busca por número de venta.
func (r *SaleRepository) GetBySaleNumber(_ context.Context, saleNumber string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(r.tx, func() {
		if id, ok := r.s.byNumber[saleNumber]; ok {
			out = r.get(id)
		}
	})
	return out, nil
}

// UpdateStatus cambia el estado solo si el actual es from.
func (r *SaleRepository) UpdateStatus(_ context.Context, id string, from, to entity.SaleStatus, at time.Time) error {
	var err error
	r.s.write(r.tx, func() {
		current, ok := r.s.sales[id]
		if !ok {
			err = fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
			return
		}
		if current.Status != from {
			err = fmt.Errorf("%w: la venta %s está en %s, se esperaba %s", domain.ErrConflict, current.SaleNumber, current.Status, from)
			return
		}
		next := current.Clone()
		next.Status = to
		next.UpdatedAt = at
		setWithUndo(r.tx, r.s.sales, id, next)
	})
	return err
}

// UpdateNotes reemplaza las notas.
func (r *SaleRepository) UpdateNotes(_ context.Context, id, notes string, at time.Time) error {
	var err error
	r.s.write(r.tx, func() {
		current, ok := r.s.sales[id]
		if !ok {
			err = fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
			return
		}
		next := current.Clone()
		next.Notes = notes
		next.UpdatedAt = at
		setWithUndo(r.tx, r.s.sales, id, next)
	})
	return err
}

// List filtra por estado, rango [StartDate, EndDate) y teléfono; más recientes primero.
func (r *SaleRepository) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var (
		out   []*entity.Sale
		total int
	)
	r.s.read(r.tx, func() {
		matched := make([]*entity.Sale, 0, len(r.s.sales))
		for _, sale := range r.s.sales {
			if f.Status != "" && sale.Status != f.Status {
				continue
			}
			if f.StartDate != nil && sale.CreatedAt.Before(*f.StartDate) {
				continue
			}
			if f.EndDate != nil && !sale.CreatedAt.Before(*f.EndDate) {
				continue
			}
			if f.CustomerPhone != "" && sale.CustomerPhone != f.CustomerPhone {
				continue
			}
			matched = append(matched, sale)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return saleNumberAfter(matched[i].SaleNumber, matched[j].SaleNumber)
		})
		total = len(matched)
		for _, sale := range paginate(matched, f.Limit, f.Offset) {
			out = append(out, sale.Clone())
		}
	})
	return out, total, nil
}

// saleNumberAfter orden por secuencia: con prefijo fijo, el número más largo es el mayor
// (SALE-1000000 va después de SALE-999999 aunque compare menor como texto).
func saleNumberAfter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}
