package events

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/rs/zerolog"
)

// LogPublisher publica en el log; se usa cuando no hay brokers configurados.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher construye el publisher.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event *entity.SaleEvent) error {
	p.log.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("sale_id", event.SaleID).
		RawJSON("payload", event.Payload).
		Msg("evento de venta")
	return nil
}
