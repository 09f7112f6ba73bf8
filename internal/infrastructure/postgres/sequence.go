package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleSequence = (*SaleSequence)(nil)

// SaleSequence reserva números de venta con la secuencia nativa sale_number_seq.
// nextval no participa del rollback: un número reservado por una tx abortada no se reutiliza.
type SaleSequence struct {
	q Querier
}

// NewSaleSequence construye el adaptador. Pasar pool o tx (Querier).
func NewSaleSequence(q Querier) *SaleSequence {
	return &SaleSequence{q: q}
}

// Next devuelve el siguiente valor de la secuencia.
func (s *SaleSequence) Next(ctx context.Context) (int64, error) {
	var v int64
	if err := s.q.QueryRow(ctx, `SELECT nextval('sale_number_seq')`).Scan(&v); err != nil {
		return 0, fmt.Errorf("nextval sale_number_seq: %w", err)
	}
	return v, nil
}
