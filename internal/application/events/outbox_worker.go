// Package events entrega los eventos de venta del outbox (tabla sale_events) a un Publisher.
// La entrega es al-menos-una-vez: un evento publicado cuyo MarkSent falla se reenvía.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/rs/zerolog"
)

// Publisher destino de los eventos (Kafka, log).
type Publisher interface {
	Publish(ctx context.Context, event *entity.SaleEvent) error
}

// WorkerOptions parámetros del worker.
type WorkerOptions struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// OutboxWorker sondea eventos pendientes y los publica.
type OutboxWorker struct {
	repo      repository.SaleEventRepository
	publisher Publisher
	opts      WorkerOptions
	metrics   *metrics.SalesMetrics
	log       zerolog.Logger
}

// NewOutboxWorker construye el worker con valores por defecto para opciones en cero.
func NewOutboxWorker(
	repo repository.SaleEventRepository,
	publisher Publisher,
	opts WorkerOptions,
	m *metrics.SalesMetrics,
	log zerolog.Logger,
) *OutboxWorker {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 10
	}
	return &OutboxWorker{repo: repo, publisher: publisher, opts: opts, metrics: m, log: log}
}

// Run procesa lotes hasta que ctx se cancela.
func (w *OutboxWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	w.log.Info().Dur("poll_interval", w.opts.PollInterval).Msg("outbox worker iniciado")
	for {
		if _, _, err := w.ProcessBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Msg("outbox: lote fallido")
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("outbox worker detenido")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch publica un lote de eventos pendientes. Devuelve enviados y fallidos;
// el error solo indica fallas del repositorio.
func (w *OutboxWorker) ProcessBatch(ctx context.Context) (sent, failed int, err error) {
	pending, err := w.repo.PullPending(ctx, w.opts.BatchSize, w.opts.MaxAttempts)
	if err != nil {
		return 0, 0, err
	}
	for _, ev := range pending {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}
		if pubErr := w.publisher.Publish(ctx, ev); pubErr != nil {
			failed++
			w.metrics.RecordEventFailed()
			w.log.Warn().
				Err(pubErr).
				Str("event_id", ev.ID).
				Str("event_type", ev.EventType).
				Int("attempt", ev.Attempts+1).
				Msg("outbox: publicación fallida")
			if err := w.repo.MarkFailed(ctx, ev.ID, pubErr.Error()); err != nil {
				return sent, failed, err
			}
			if ev.Attempts+1 >= w.opts.MaxAttempts {
				w.log.Error().Str("event_id", ev.ID).Str("sale_id", ev.SaleID).Msg("outbox: evento agotó reintentos")
			}
			continue
		}
		if err := w.repo.MarkSent(ctx, ev.ID); err != nil {
			return sent, failed, err
		}
		sent++
		w.metrics.RecordEventPublished()
	}

	if n, err := w.repo.CountPending(ctx); err == nil {
		w.metrics.SetOutboxPending(n)
	}
	return sent, failed, nil
}
