package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	domainsales "github.com/jhoicas/pos-api/internal/domain/sales"
	"github.com/jhoicas/pos-api/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// CreateSaleUseCase coordina la creación de ventas: valida ítems, descuenta stock,
// reserva el número de venta y persiste la venta con su evento, todo en una transacción.
type CreateSaleUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	numbering   Numbering
	metrics     *metrics.SalesMetrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso. productRepo se usa solo para lecturas fuera de la transacción.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	numbering Numbering,
	m *metrics.SalesMetrics,
	log zerolog.Logger,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		numbering:   numbering,
		metrics:     m,
		log:         log,
		now:         time.Now,
	}
}

// saleInput entrada ya validada.
type saleInput struct {
	items         []dto.SaleItemRequest
	paymentMethod entity.PaymentMethod
	tax           decimal.Decimal
	discount      decimal.Decimal
	status        entity.SaleStatus
	customerName  string
	customerPhone string
	notes         string
}

func validateCreate(in dto.CreateSaleRequest) (*saleInput, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la venta debe tener al menos un ítem", domain.ErrInvalidInput)
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, fmt.Errorf("%w: ítem %d sin product_id", domain.ErrInvalidInput, i+1)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: ítem %d con cantidad %d, debe ser mayor a 0", domain.ErrInvalidInput, i+1, it.Quantity)
		}
	}
	method := entity.PaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod)))
	if !method.Valid() {
		return nil, fmt.Errorf("%w: método de pago %q no soportado", domain.ErrInvalidInput, in.PaymentMethod)
	}
	tax, err := domainsales.NormalizeAmount("tax", in.Tax)
	if err != nil {
		return nil, err
	}
	discount, err := domainsales.NormalizeAmount("discount", in.Discount)
	if err != nil {
		return nil, err
	}
	status, err := domainsales.InitialStatus(entity.SaleStatus(strings.ToLower(in.Status)))
	if err != nil {
		return nil, err
	}
	return &saleInput{
		items:         in.Items,
		paymentMethod: method,
		tax:           tax,
		discount:      discount,
		status:        status,
		customerName:  strings.TrimSpace(in.CustomerName),
		customerPhone: strings.TrimSpace(in.CustomerPhone),
		notes:         in.Notes,
	}, nil
}

// CreateSale crea la venta. Cualquier falla aborta la transacción completa:
// ningún descuento de stock ni registro de venta queda visible.
//
// Errores: domain.ErrInvalidInput, domain.ErrNotFound, domain.ErrInactiveProduct,
// domain.ErrInsufficientStock, domain.ErrConflict, domain.ErrTransientStore (reintentable).
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "sales.CreateSale")
	defer span.End()
	span.SetAttributes(attribute.Int("sale.items", len(in.Items)))

	sale, products, err := uc.createSale(ctx, in)
	if err != nil {
		uc.metrics.RecordRejected(err)
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("sale.number", sale.SaleNumber))
	uc.metrics.RecordSaleCreated(sale.Total, time.Since(start))
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("total", sale.Total.StringFixed(domainsales.MoneyPlaces)).
		Int("items", len(sale.Items)).
		Msg("venta creada")
	return toSaleResponse(sale, products), nil
}

func (uc *CreateSaleUseCase) createSale(ctx context.Context, in dto.CreateSaleRequest) (*entity.Sale, map[string]*entity.Product, error) {
	input, err := validateCreate(in)
	if err != nil {
		return nil, nil, err
	}

	var (
		sale     *entity.Sale
		products map[string]*entity.Product
	)
	err = uc.txRunner.RunSales(ctx, func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		sequence repository.SaleSequence,
		eventRepo repository.SaleEventRepository,
	) error {
		products = make(map[string]*entity.Product, len(input.items))
		items := make([]entity.SaleItem, 0, len(input.items))
		subtotal := decimal.Zero

		// 1) Ítems en el orden recibido: un ítem posterior ve el stock ya descontado.
		for _, req := range input.items {
			item, product, err := uc.applyItem(ctx, productRepo, req)
			if err != nil {
				return err
			}
			subtotal = subtotal.Add(item.LineTotal)
			items = append(items, item)
			products[product.ID] = product
		}

		// 2) Totales
		total, err := domainsales.Total(subtotal, input.tax, input.discount)
		if err != nil {
			return err
		}

		// 3) Número de venta reservado atómicamente
		seq, err := sequence.Next(ctx)
		if err != nil {
			return fmt.Errorf("reservar número de venta: %w", err)
		}

		now := uc.now()
		sale = &entity.Sale{
			ID:            uuid.New().String(),
			SaleNumber:    domainsales.FormatSaleNumber(uc.numbering.Prefix, uc.numbering.Width, seq),
			Items:         items,
			Subtotal:      subtotal,
			Tax:           input.tax,
			Discount:      input.discount,
			Total:         total,
			PaymentMethod: input.paymentMethod,
			CustomerName:  input.customerName,
			CustomerPhone: input.customerPhone,
			Status:        input.status,
			Notes:         input.notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("%w: número de venta %s ya asignado", domain.ErrConflict, sale.SaleNumber)
			}
			return fmt.Errorf("guardar venta: %w", err)
		}

		// 4) Evento en el outbox, misma transacción
		event, err := newSaleEvent(entity.SaleEventCreated, sale, now)
		if err != nil {
			return err
		}
		return eventRepo.Enqueue(ctx, event)
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, products, nil
}

// applyItem bloquea el producto, valida estado y stock, y descuenta la cantidad.
// El precio unitario queda congelado en la línea.
func (uc *CreateSaleUseCase) applyItem(
	ctx context.Context,
	productRepo repository.ProductRepository,
	req dto.SaleItemRequest,
) (entity.SaleItem, *entity.Product, error) {
	product, err := productRepo.GetForUpdate(ctx, req.ProductID)
	if err != nil {
		return entity.SaleItem{}, nil, fmt.Errorf("cargar producto %s: %w", req.ProductID, err)
	}
	if product == nil {
		return entity.SaleItem{}, nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, req.ProductID)
	}
	if !product.IsActive {
		return entity.SaleItem{}, nil, fmt.Errorf("%w: %s (%s)", domain.ErrInactiveProduct, product.Name, product.ID)
	}
	if !product.HasStock(req.Quantity) {
		return entity.SaleItem{}, nil, fmt.Errorf("%w: %s disponible %d, solicitado %d",
			domain.ErrInsufficientStock, product.Name, product.Stock, req.Quantity)
	}

	// Descuento condicional: solo aplica si el stock resultante queda >= 0.
	remaining, err := productRepo.AdjustStock(ctx, product.ID, -req.Quantity, 0)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return entity.SaleItem{}, nil, fmt.Errorf("%w: %s solicitado %d", domain.ErrInsufficientStock, product.Name, req.Quantity)
		}
		return entity.SaleItem{}, nil, fmt.Errorf("descontar stock de %s: %w", product.ID, err)
	}
	product.Stock = remaining

	return entity.SaleItem{
		ProductID: product.ID,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
		LineTotal: domainsales.LineTotal(req.Quantity, product.Price),
	}, product, nil
}
