package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleEventRepository = (*SaleEventRepo)(nil)

// SaleEventRepo outbox de eventos de venta (tabla sale_events).
type SaleEventRepo struct {
	q Querier
}

// NewSaleEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleEventRepository(q Querier) *SaleEventRepo {
	return &SaleEventRepo{q: q}
}

// Enqueue inserta el evento; dentro de la tx de la venta, ambos se confirman juntos.
func (r *SaleEventRepo) Enqueue(ctx context.Context, ev *entity.SaleEvent) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sale_events (id, sale_id, event_type, payload, status, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text::jsonb, $5, 0, $6, $7)`,
		ev.ID, ev.SaleID, ev.EventType, string(ev.Payload), string(ev.Status), ev.CreatedAt, ev.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sale event: %w", err)
	}
	return nil
}

// PullPending eventos no enviados con intentos disponibles, por antigüedad.
func (r *SaleEventRepo) PullPending(ctx context.Context, limit, maxAttempts int) ([]*entity.SaleEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, event_type, payload::text, status, attempts, COALESCE(last_error, ''), created_at, updated_at
		FROM sale_events
		WHERE status <> 'sent' AND ($2 <= 0 OR attempts < $2)
		ORDER BY created_at, id
		LIMIT $1`, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("pull sale events: %w", err)
	}
	defer rows.Close()
	var out []*entity.SaleEvent
	for rows.Next() {
		var (
			ev      entity.SaleEvent
			payload string
			status  string
		)
		if err := rows.Scan(&ev.ID, &ev.SaleID, &ev.EventType, &payload, &status, &ev.Attempts,
			&ev.LastError, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sale event: %w", err)
		}
		ev.Payload = []byte(payload)
		ev.Status = entity.SaleEventStatus(status)
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// MarkSent marca el evento como entregado.
func (r *SaleEventRepo) MarkSent(ctx context.Context, id string) error {
	return r.mark(ctx, `
		UPDATE sale_events SET status = 'sent', attempts = attempts + 1, last_error = NULL, updated_at = now()
		WHERE id = $1`, id)
}

// MarkFailed registra un intento fallido.
func (r *SaleEventRepo) MarkFailed(ctx context.Context, id, lastError string) error {
	return r.mark(ctx, `
		UPDATE sale_events SET status = 'failed', attempts = attempts + 1, last_error = $2, updated_at = now()
		WHERE id = $1`, id, lastError)
}

func (r *SaleEventRepo) mark(ctx context.Context, query string, args ...any) error {
	cmd, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update sale event: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: evento %v", domain.ErrNotFound, args[0])
	}
	return nil
}

// CountPending eventos aún no enviados.
func (r *SaleEventRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sale_events WHERE status <> 'sent'`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sale events: %w", err)
	}
	return n, nil
}
