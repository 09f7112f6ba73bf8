package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-api/internal/domain/sales"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// CancelSaleUseCase compensa una venta: restaura el stock consumido y la marca cancelada,
// en una sola transacción. Una segunda cancelación falla con domain.ErrConflict sin efectos.
type CancelSaleUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	metrics     *metrics.SalesMetrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewCancelSaleUseCase construye el caso de uso.
func NewCancelSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	m *metrics.SalesMetrics,
	log zerolog.Logger,
) *CancelSaleUseCase {
	return &CancelSaleUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// CancelSale cancela la venta saleID.
//
// Errores: domain.ErrNotFound, domain.ErrConflict (ya cancelada), domain.ErrInconsistent
// (un producto referenciado ya no existe; la venta queda intacta), domain.ErrTransientStore.
func (uc *CancelSaleUseCase) CancelSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	ctx, span := tracer.Start(ctx, "sales.CancelSale")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	var sale *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.SaleSequence,
		eventRepo repository.SaleEventRepository,
	) error {
		current, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("cargar venta %s: %w", saleID, err)
		}
		if current == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		if err := uc.CancelInTx(ctx, productRepo, saleRepo, eventRepo, current, uc.now()); err != nil {
			return err
		}
		sale = current
		return nil
	})
	if err != nil {
		uc.metrics.RecordRejected(err)
		recordSpanError(span, err)
		return nil, err
	}

	uc.metrics.RecordSaleCancelled()
	uc.log.Info().Str("sale_id", sale.ID).Str("sale_number", sale.SaleNumber).Msg("venta cancelada")

	products, err := resolveProducts(ctx, uc.productRepo, sale)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, products), nil
}

// CancelInTx restaura el stock de cada línea y transiciona la venta a cancelled usando los
// repositorios del llamador (misma transacción). sale debe haberse leído con GetForUpdate.
// Si retorna error el llamador debe abortar la transacción.
func (uc *CancelSaleUseCase) CancelInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	eventRepo repository.SaleEventRepository,
	sale *entity.Sale,
	now time.Time,
) error {
	if sale.Status == entity.SaleStatusCancelled {
		return fmt.Errorf("%w: la venta %s ya está cancelada", domain.ErrConflict, sale.SaleNumber)
	}
	if err := domainsales.CheckTransition(sale.Status, entity.SaleStatusCancelled); err != nil {
		return err
	}

	for _, it := range sale.Items {
		// La restauración aplica también a productos desactivados (desactivar no es borrar).
		if _, err := productRepo.AdjustStock(ctx, it.ProductID, it.Quantity, 0); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				uc.log.Error().
					Str("sale_id", sale.ID).
					Str("sale_number", sale.SaleNumber).
					Str("product_id", it.ProductID).
					Int64("quantity", it.Quantity).
					Msg("cancelación abortada: producto referenciado inexistente")
				return fmt.Errorf("%w: la venta %s referencia el producto %s que ya no existe",
					domain.ErrInconsistent, sale.SaleNumber, it.ProductID)
			}
			return fmt.Errorf("restaurar stock de %s: %w", it.ProductID, err)
		}
		if active, err := productRepo.IsActive(ctx, it.ProductID); err == nil && !active {
			uc.log.Warn().
				Str("sale_number", sale.SaleNumber).
				Str("product_id", it.ProductID).
				Msg("stock restaurado en producto inactivo")
		}
	}

	if err := saleRepo.UpdateStatus(ctx, sale.ID, sale.Status, entity.SaleStatusCancelled, now); err != nil {
		return fmt.Errorf("cambiar estado de %s: %w", sale.SaleNumber, err)
	}
	sale.Status = entity.SaleStatusCancelled
	sale.UpdatedAt = now

	event, err := newSaleEvent(entity.SaleEventCancelled, sale, now)
	if err != nil {
		return err
	}
	return eventRepo.Enqueue(ctx, event)
}
