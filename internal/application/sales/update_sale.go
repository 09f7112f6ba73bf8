package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-api/internal/domain/sales"
	"github.com/jhoicas/pos-api/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
)

// UpdateSaleUseCase actualiza estado y/o notas de una venta.
// Todo cambio de estado pasa por la guardia de transiciones; pasar a cancelled
// delega en CancelSaleUseCase para restaurar el stock en la misma transacción.
type UpdateSaleUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	canceller   *CancelSaleUseCase
	metrics     *metrics.SalesMetrics
	now         func() time.Time
}

// NewUpdateSaleUseCase construye el caso de uso.
func NewUpdateSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	canceller *CancelSaleUseCase,
	m *metrics.SalesMetrics,
) *UpdateSaleUseCase {
	return &UpdateSaleUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		canceller:   canceller,
		metrics:     m,
		now:         time.Now,
	}
}

// UpdateSale aplica los cambios. Un estado igual al actual no es una transición: solo cambian las notas.
func (uc *UpdateSaleUseCase) UpdateSale(ctx context.Context, saleID string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	if in.Status == nil && in.Notes == nil {
		return nil, fmt.Errorf("%w: nada que actualizar", domain.ErrInvalidInput)
	}
	ctx, span := tracer.Start(ctx, "sales.UpdateSale")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	var (
		sale      *entity.Sale
		cancelled bool
	)
	err := uc.txRunner.RunSales(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.SaleSequence,
		eventRepo repository.SaleEventRepository,
	) error {
		cancelled = false
		current, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("cargar venta %s: %w", saleID, err)
		}
		if current == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		now := uc.now()

		if in.Status != nil {
			target := entity.SaleStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
			switch {
			case target == entity.SaleStatusCancelled:
				// cancelled es terminal: una segunda cancelación es Conflict aunque coincida el estado.
				if err := uc.canceller.CancelInTx(ctx, productRepo, saleRepo, eventRepo, current, now); err != nil {
					return err
				}
				cancelled = true
			case target == current.Status:
				// sin transición
			default:
				if err := domainsales.CheckTransition(current.Status, target); err != nil {
					return err
				}
				if err := saleRepo.UpdateStatus(ctx, current.ID, current.Status, target, now); err != nil {
					return fmt.Errorf("cambiar estado de %s: %w", current.SaleNumber, err)
				}
				current.Status = target
				current.UpdatedAt = now
				if target == entity.SaleStatusCompleted {
					event, err := newSaleEvent(entity.SaleEventCompleted, current, now)
					if err != nil {
						return err
					}
					if err := eventRepo.Enqueue(ctx, event); err != nil {
						return err
					}
				}
			}
		}

		if in.Notes != nil {
			if err := saleRepo.UpdateNotes(ctx, current.ID, *in.Notes, now); err != nil {
				return fmt.Errorf("actualizar notas de %s: %w", current.SaleNumber, err)
			}
			current.Notes = *in.Notes
			current.UpdatedAt = now
		}
		sale = current
		return nil
	})
	if err != nil {
		uc.metrics.RecordRejected(err)
		recordSpanError(span, err)
		return nil, err
	}
	if cancelled {
		uc.metrics.RecordSaleCancelled()
	}

	products, err := resolveProducts(ctx, uc.productRepo, sale)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, products), nil
}
