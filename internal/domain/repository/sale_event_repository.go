package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleEventRepository outbox de eventos de venta.
type SaleEventRepository interface {
	Enqueue(ctx context.Context, event *entity.SaleEvent) error
	// PullPending devuelve eventos pendientes o fallidos con menos de maxAttempts intentos, por antigüedad.
	PullPending(ctx context.Context, limit, maxAttempts int) ([]*entity.SaleEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, lastError string) error
	CountPending(ctx context.Context) (int, error)
}
