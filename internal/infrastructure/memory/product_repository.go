package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct {
	s  *Store
	tx *txScope
}

// Create inserta el producto. ErrDuplicate si el SKU o el código de barras ya existen.
func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	var err error
	r.s.write(r.tx, func() {
		if _, ok := r.s.products[p.ID]; ok {
			err = fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
			return
		}
		if _, ok := r.s.bySKU[p.SKU]; ok {
			err = fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
			return
		}
		if p.Barcode != "" {
			if _, ok := r.s.byBarcode[p.Barcode]; ok {
				err = fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
				return
			}
			setWithUndo(r.tx, r.s.byBarcode, p.Barcode, p.ID)
		}
		setWithUndo(r.tx, r.s.bySKU, p.SKU, p.ID)
		setWithUndo(r.tx, r.s.products, p.ID, *p)
	})
	return err
}

func (r *ProductRepository) get(id string) *entity.Product {
	p, ok := r.s.products[id]
	if !ok {
		return nil
	}
	return &p
}

// GetByID devuelve una copia del producto o nil.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(r.tx, func() { out = r.get(id) })
	return out, nil
}

// GetForUpdate dentro de un ámbito el lock exclusivo del store ya protege la fila.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// GetBySKU busca por SKU.
func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(r.tx, func() {
		if id, ok := r.s.bySKU[sku]; ok {
			out = r.get(id)
		}
	})
	return out, nil
}

// GetByBarcode busca por código de barras.
func (r *ProductRepository) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(r.tx, func() {
		if id, ok := r.s.byBarcode[barcode]; ok {
			out = r.get(id)
		}
	})
	return out, nil
}

// IsActive ErrNotFound si el producto no existe.
func (r *ProductRepository) IsActive(_ context.Context, id string) (bool, error) {
	var (
		active bool
		err    error
	)
	r.s.read(r.tx, func() {
		p, ok := r.s.products[id]
		if !ok {
			err = fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
			return
		}
		active = p.IsActive
	})
	return active, err
}

// Update persiste todo menos el stock.
func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	var err error
	r.s.write(r.tx, func() {
		current, ok := r.s.products[p.ID]
		if !ok {
			err = fmt.Errorf("%w: producto %s", domain.ErrNotFound, p.ID)
			return
		}
		if id, ok := r.s.bySKU[p.SKU]; ok && id != p.ID {
			err = fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
			return
		}
		if p.Barcode != "" {
			if id, ok := r.s.byBarcode[p.Barcode]; ok && id != p.ID {
				err = fmt.Errorf("%w: código de barras %s", domain.ErrDuplicate, p.Barcode)
				return
			}
		}
		if current.SKU != p.SKU {
			deleteWithUndo(r.tx, r.s.bySKU, current.SKU)
			setWithUndo(r.tx, r.s.bySKU, p.SKU, p.ID)
		}
		if current.Barcode != p.Barcode {
			if current.Barcode != "" {
				deleteWithUndo(r.tx, r.s.byBarcode, current.Barcode)
			}
			if p.Barcode != "" {
				setWithUndo(r.tx, r.s.byBarcode, p.Barcode, p.ID)
			}
		}
		updated := *p
		updated.Stock = current.Stock
		updated.CreatedAt = current.CreatedAt
		setWithUndo(r.tx, r.s.products, p.ID, updated)
	})
	return err
}

// AdjustStock suma delta si el resultado queda >= minResulting.
func (r *ProductRepository) AdjustStock(_ context.Context, id string, delta, minResulting int64) (int64, error) {
	var (
		stock int64
		err   error
	)
	r.s.write(r.tx, func() {
		p, ok := r.s.products[id]
		if !ok {
			err = fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
			return
		}
		if p.Stock+delta < minResulting {
			err = fmt.Errorf("%w: producto %s stock %d, ajuste %d", domain.ErrInsufficientStock, id, p.Stock, delta)
			return
		}
		p.Stock += delta
		setWithUndo(r.tx, r.s.products, id, p)
		stock = p.Stock
	})
	return stock, err
}

// List filtra, ordena por creación descendente y pagina.
func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var (
		out   []*entity.Product
		total int
	)
	search := strings.ToLower(strings.TrimSpace(f.Search))
	r.s.read(r.tx, func() {
		matched := make([]entity.Product, 0, len(r.s.products))
		for _, p := range r.s.products {
			if f.ActiveOnly && !p.IsActive {
				continue
			}
			if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.SKU), search) &&
				!strings.Contains(strings.ToLower(p.Barcode), search) {
				continue
			}
			matched = append(matched, p)
		}
		sort.Slice(matched, func(i, j int) bool {
			if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].SKU < matched[j].SKU
		})
		total = len(matched)
		for _, p := range paginate(matched, f.Limit, f.Offset) {
			p := p
			out = append(out, &p)
		}
	})
	return out, total, nil
}

// ListCategories categorías distintas de productos activos, ordenadas.
func (r *ProductRepository) ListCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	r.s.read(r.tx, func() {
		for _, p := range r.s.products {
			if p.IsActive && p.Category != "" {
				seen[p.Category] = struct{}{}
			}
		}
	})
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
