// Package memory implementa los repositorios en memoria. Un único mutex serializa los
// ámbitos atómicos; un registro de deshacer revierte todo lo escrito si el ámbito falla.
// Sirve para pruebas y para ejecutar la API sin PostgreSQL (STORE_DRIVER=memory).
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ sales.TxRunner = (*Store)(nil)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	mu sync.RWMutex

	products  map[string]entity.Product
	bySKU     map[string]string
	byBarcode map[string]string

	sales    map[string]*entity.Sale
	byNumber map[string]string

	events     map[string]*entity.SaleEvent
	eventOrder []string

	seq atomic.Int64
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]entity.Product),
		bySKU:     make(map[string]string),
		byBarcode: make(map[string]string),
		sales:     make(map[string]*entity.Sale),
		byNumber:  make(map[string]string),
		events:    make(map[string]*entity.SaleEvent),
	}
}

// txScope registro de deshacer de un ámbito atómico. nil = operación suelta.
type txScope struct {
	undo []func()
}

func (tx *txScope) onRollback(fn func()) {
	if tx != nil {
		tx.undo = append(tx.undo, fn)
	}
}

func (tx *txScope) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func setWithUndo[K comparable, V any](tx *txScope, m map[K]V, k K, v V) {
	prev, existed := m[k]
	tx.onRollback(func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

func deleteWithUndo[K comparable, V any](tx *txScope, m map[K]V, k K) {
	prev, existed := m[k]
	if !existed {
		return
	}
	tx.onRollback(func() { m[k] = prev })
	delete(m, k)
}

// read ejecuta fn con lock de lectura salvo que ya esté dentro de un ámbito (lock tomado).
func (s *Store) read(tx *txScope, fn func()) {
	if tx == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn()
}

func (s *Store) write(tx *txScope, fn func()) {
	if tx == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

// RunSales ejecuta fn de forma exclusiva. Si fn falla o el contexto expira, se deshace todo.
func (s *Store) RunSales(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	sequence repository.SaleSequence,
	eventRepo repository.SaleEventRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txScope{}
	err := fn(
		&ProductRepository{s: s, tx: tx},
		&SaleRepository{s: s, tx: tx},
		&SaleSequence{s: s},
		&SaleEventRepository{s: s, tx: tx},
	)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", domain.ErrTransientStore, ctx.Err())
	}
	if err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// Ping siempre disponible.
func (s *Store) Ping(context.Context) error { return nil }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepository { return &ProductRepository{s: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepository { return &SaleRepository{s: s} }

// Events outbox fuera de transacción.
func (s *Store) Events() *SaleEventRepository { return &SaleEventRepository{s: s} }

// Analytics consultas de reportes.
func (s *Store) Analytics() *AnalyticsRepository { return &AnalyticsRepository{s: s} }

// SaleSequence contador atómico de números de venta. Los valores reservados por un ámbito
// abortado no se reutilizan.
type SaleSequence struct {
	s *Store
}

// Next reserva el siguiente valor.
func (q *SaleSequence) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return q.s.seq.Add(1), nil
}

// Sequence secuencia fuera de transacción.
func (s *Store) Sequence() *SaleSequence { return &SaleSequence{s: s} }
