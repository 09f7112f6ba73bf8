package entity

import "time"

// Tipos de evento de venta publicados por el outbox.
const (
	SaleEventCreated   = "sale.created"
	SaleEventCompleted = "sale.completed"
	SaleEventCancelled = "sale.cancelled"
)

// SaleEventStatus estado de entrega de un evento del outbox.
type SaleEventStatus string

const (
	SaleEventPending SaleEventStatus = "pending"
	SaleEventSent    SaleEventStatus = "sent"
	SaleEventFailed  SaleEventStatus = "failed"
)

// SaleEvent evento persistido en la misma transacción que la venta (outbox).
type SaleEvent struct {
	ID        string
	SaleID    string
	EventType string
	Payload   []byte // JSON
	Status    SaleEventStatus
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}
