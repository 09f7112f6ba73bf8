package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada.
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// CreateSaleRequest entrada para crear una venta. Tax y Discount llegan ya calculados.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items"`
	PaymentMethod string            `json:"payment_method"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"`
	CustomerName  string            `json:"customer_name"`
	CustomerPhone string            `json:"customer_phone"`
	Notes         string            `json:"notes"`
	// Status opcional: pending o completed (por defecto).
	Status string `json:"status"`
}

// UpdateSaleRequest cambios permitidos sobre una venta existente.
type UpdateSaleRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// SaleListRequest filtros del listado de ventas.
type SaleListRequest struct {
	Status        string `query:"status"`
	StartDate     string `query:"start_date"` // YYYY-MM-DD
	EndDate       string `query:"end_date"`   // YYYY-MM-DD, inclusivo
	CustomerPhone string `query:"customer_phone"`
	Page          int    `query:"page"`
	Limit         int    `query:"limit"`
}

// SaleItemResponse línea de venta con el producto resuelto para mostrar.
type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID            string             `json:"id"`
	SaleNumber    string             `json:"sale_number"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Status        string             `json:"status"`
	Notes         string             `json:"notes,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items      []SaleResponse `json:"items"`
	Pagination Pagination     `json:"pagination"`
}
