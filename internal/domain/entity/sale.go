package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Valid indica si el estado es uno de los conocidos.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod medio de pago.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentOnline PaymentMethod = "online"
)

// Valid indica si el medio de pago es aceptado.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOnline:
		return true
	}
	return false
}

// Sale registro histórico de una venta. Los ítems y sus precios no cambian después de creada;
// solo el estado (vía guardia de transiciones) y las notas.
type Sale struct {
	ID            string
	SaleNumber    string // ej. SALE-000123, asignado una sola vez
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal // Subtotal + Tax - Discount
	PaymentMethod PaymentMethod
	CustomerName  string
	CustomerPhone string
	Status        SaleStatus
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem línea de la venta con snapshot del precio al momento de vender.
type SaleItem struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Clone copia la venta incluyendo sus ítems.
func (s *Sale) Clone() *Sale {
	out := *s
	out.Items = make([]SaleItem, len(s.Items))
	copy(out.Items, s.Items)
	return &out
}

// TotalQuantity suma de unidades vendidas.
func (s *Sale) TotalQuantity() int64 {
	var n int64
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
