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
)

// QueryUseCase lecturas del libro de ventas.
type QueryUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo, productRepo: productRepo}
}

// GetByID obtiene una venta por ID.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return uc.respond(ctx, sale)
}

// GetBySaleNumber obtiene una venta por su número (ej. SALE-000001).
func (uc *QueryUseCase) GetBySaleNumber(ctx context.Context, saleNumber string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetBySaleNumber(ctx, strings.ToUpper(strings.TrimSpace(saleNumber)))
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleNumber)
	}
	return uc.respond(ctx, sale)
}

// List lista ventas por filtros con paginación, más recientes primero.
func (uc *QueryUseCase) List(ctx context.Context, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	filter, page, err := buildSaleFilter(in)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	products, err := resolveProducts(ctx, uc.productRepo, list...)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSaleResponse(s, products))
	}
	return &dto.SaleListResponse{Items: items, Pagination: dto.NewPagination(page, total)}, nil
}

func (uc *QueryUseCase) respond(ctx context.Context, sale *entity.Sale) (*dto.SaleResponse, error) {
	products, err := resolveProducts(ctx, uc.productRepo, sale)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, products), nil
}

func buildSaleFilter(in dto.SaleListRequest) (repository.SaleFilter, dto.PageRequest, error) {
	page := dto.PageRequest{Page: in.Page, Limit: in.Limit}
	page.DefaultPage()

	filter := repository.SaleFilter{
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Limit:         page.Limit,
		Offset:        page.Offset(),
	}
	if in.Status != "" {
		st := entity.SaleStatus(strings.ToLower(in.Status))
		if !st.Valid() {
			return filter, page, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, in.Status)
		}
		filter.Status = st
	}
	if in.StartDate != "" {
		start, err := time.ParseInLocation("2006-01-02", in.StartDate, time.Local)
		if err != nil {
			return filter, page, fmt.Errorf("%w: start_date inválido", domain.ErrInvalidInput)
		}
		filter.StartDate = &start
	}
	if in.EndDate != "" {
		end, err := time.ParseInLocation("2006-01-02", in.EndDate, time.Local)
		if err != nil {
			return filter, page, fmt.Errorf("%w: end_date inválido", domain.ErrInvalidInput)
		}
		end = end.AddDate(0, 0, 1) // exclusivo: incluye el día completo
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && !filter.StartDate.Before(*filter.EndDate) {
		return filter, page, fmt.Errorf("%w: start_date no puede ser posterior a end_date", domain.ErrInvalidInput)
	}
	return filter, page, nil
}
