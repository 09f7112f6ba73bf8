package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleEventRepository = (*SaleEventRepository)(nil)

// SaleEventRepository outbox en memoria.
type SaleEventRepository struct {
	s  *Store
	tx *txScope
}

// Enqueue agrega el evento al final de la cola.
func (r *SaleEventRepository) Enqueue(_ context.Context, event *entity.SaleEvent) error {
	var err error
	r.s.write(r.tx, func() {
		if _, ok := r.s.events[event.ID]; ok {
			err = fmt.Errorf("%w: evento %s", domain.ErrDuplicate, event.ID)
			return
		}
		cp := *event
		setWithUndo(r.tx, r.s.events, event.ID, &cp)
		n := len(r.s.eventOrder)
		r.tx.onRollback(func() { r.s.eventOrder = r.s.eventOrder[:n] })
		r.s.eventOrder = append(r.s.eventOrder, event.ID)
	})
	return err
}

// PullPending eventos no enviados con intentos disponibles, en orden de llegada.
func (r *SaleEventRepository) PullPending(_ context.Context, limit, maxAttempts int) ([]*entity.SaleEvent, error) {
	var out []*entity.SaleEvent
	r.s.read(r.tx, func() {
		for _, id := range r.s.eventOrder {
			ev := r.s.events[id]
			if ev.Status == entity.SaleEventSent {
				continue
			}
			if maxAttempts > 0 && ev.Attempts >= maxAttempts {
				continue
			}
			cp := *ev
			out = append(out, &cp)
			if limit > 0 && len(out) >= limit {
				return
			}
		}
	})
	return out, nil
}

// MarkSent marca el evento como entregado.
func (r *SaleEventRepository) MarkSent(_ context.Context, id string) error {
	return r.update(id, func(ev *entity.SaleEvent) {
		ev.Status = entity.SaleEventSent
		ev.Attempts++
		ev.LastError = ""
	})
}

// MarkFailed registra un intento fallido.
func (r *SaleEventRepository) MarkFailed(_ context.Context, id, lastError string) error {
	return r.update(id, func(ev *entity.SaleEvent) {
		ev.Status = entity.SaleEventFailed
		ev.Attempts++
		ev.LastError = lastError
	})
}

func (r *SaleEventRepository) update(id string, mutate func(*entity.SaleEvent)) error {
	var err error
	r.s.write(r.tx, func() {
		ev, ok := r.s.events[id]
		if !ok {
			err = fmt.Errorf("%w: evento %s", domain.ErrNotFound, id)
			return
		}
		cp := *ev
		mutate(&cp)
		cp.UpdatedAt = time.Now()
		setWithUndo(r.tx, r.s.events, id, &cp)
	})
	return err
}

// CountPending eventos aún no enviados.
func (r *SaleEventRepository) CountPending(_ context.Context) (int, error) {
	n := 0
	r.s.read(r.tx, func() {
		for _, ev := range r.s.events {
			if ev.Status != entity.SaleEventSent {
				n++
			}
		}
	})
	return n, nil
}
