package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/jhoicas/pos-api/internal/application/sales")

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// resolveProducts carga los productos referenciados por las ventas (solo lectura, para mostrar).
// Un producto ausente se omite: la línea conserva su snapshot.
func resolveProducts(ctx context.Context, repo repository.ProductRepository, sales ...*entity.Sale) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product)
	for _, s := range sales {
		for _, it := range s.Items {
			if _, ok := out[it.ProductID]; ok {
				continue
			}
			p, err := repo.GetByID(ctx, it.ProductID)
			if err != nil {
				return nil, fmt.Errorf("resolver producto %s: %w", it.ProductID, err)
			}
			if p != nil {
				out[it.ProductID] = p
			}
		}
	}
	return out, nil
}

func toSaleResponse(s *entity.Sale, products map[string]*entity.Product) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		item := dto.SaleItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
		if p, ok := products[it.ProductID]; ok {
			item.ProductName = p.Name
			item.SKU = p.SKU
		}
		items = append(items, item)
	}
	return &dto.SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		Items:         items,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Discount:      s.Discount,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Status:        string(s.Status),
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// salePayload cuerpo JSON de los eventos de venta.
type salePayload struct {
	SaleID     string            `json:"sale_id"`
	SaleNumber string            `json:"sale_number"`
	Status     string            `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	Items      []salePayloadItem `json:"items"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type salePayloadItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func newSaleEvent(eventType string, s *entity.Sale, now time.Time) (*entity.SaleEvent, error) {
	payload := salePayload{
		SaleID:     s.ID,
		SaleNumber: s.SaleNumber,
		Status:     string(s.Status),
		Total:      s.Total,
		Items:      make([]salePayloadItem, 0, len(s.Items)),
		OccurredAt: now,
	}
	for _, it := range s.Items {
		payload.Items = append(payload.Items, salePayloadItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serializar evento %s: %w", eventType, err)
	}
	return &entity.SaleEvent{
		ID:        uuid.New().String(),
		SaleID:    s.ID,
		EventType: eventType,
		Payload:   raw,
		Status:    entity.SaleEventPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
