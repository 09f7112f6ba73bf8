package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, sale_number, subtotal, tax, discount, total, payment_method,
	customer_name, customer_phone, status, notes, created_at, updated_at`

// SaleRepo libro de ventas sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s                  entity.Sale
		method, status     string
		name, phone, notes *string
	)
	err := row.Scan(&s.ID, &s.SaleNumber, &s.Subtotal, &s.Tax, &s.Discount, &s.Total, &method,
		&name, &phone, &status, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	s.Status = entity.SaleStatus(status)
	s.CustomerName = derefString(name)
	s.CustomerPhone = derefString(phone)
	s.Notes = derefString(notes)
	return &s, nil
}

// Create inserta cabecera e ítems. Los CHECK de la tabla respaldan la reconciliación del total.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.SaleNumber, s.Subtotal, s.Tax, s.Discount, s.Total, string(s.PaymentMethod),
		nullIfEmpty(s.CustomerName), nullIfEmpty(s.CustomerPhone), string(s.Status), nullIfEmpty(s.Notes),
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de venta %s", domain.ErrDuplicate, s.SaleNumber)
		}
		if isCheckViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	itemQuery := `
		INSERT INTO sale_items (sale_id, line_no, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range s.Items {
		if _, err := r.q.Exec(ctx, itemQuery, s.ID, i+1, it.ProductID, it.Quantity, it.UnitPrice, it.LineTotal); err != nil {
			return fmt.Errorf("insert sale item %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *SaleRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadItems(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID obtiene una venta por ID.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, "get sale", `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera de la venta hasta el fin de la transacción.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, nil
	}
	return r.getOne(ctx, "get sale for update", `SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// GetBySaleNumber obtiene una venta por su número.
func (r *SaleRepo) GetBySaleNumber(ctx context.Context, saleNumber string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale by number", `SELECT `+saleColumns+` FROM sales WHERE sale_number = $1`, saleNumber)
}

func (r *SaleRepo) loadItems(ctx context.Context, sales ...*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sales))
	byID := make(map[string]*entity.Sale, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
		byID[s.ID] = s
		s.Items = s.Items[:0]
	}
	rows, err := r.q.Query(ctx, `
		SELECT sale_id, product_id, quantity, unit_price, line_total
		FROM sale_items WHERE sale_id = ANY($1)
		ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			saleID string
			it     entity.SaleItem
		)
		if err := rows.Scan(&saleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus cambio condicional: solo si el estado actual es from.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id string, from, to entity.SaleStatus, at time.Time) error {
	if _, ok := parseID(id); !ok {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE sales SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`, id, string(from), string(to), at)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var current string
	err = r.q.QueryRow(ctx, `SELECT status FROM sales WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	return fmt.Errorf("%w: la venta está en %s, se esperaba %s", domain.ErrConflict, current, from)
}

// UpdateNotes reemplaza las notas de la venta.
func (r *SaleRepo) UpdateNotes(ctx context.Context, id, notes string, at time.Time) error {
	if _, ok := parseID(id); !ok {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	cmd, err := r.q.Exec(ctx, `UPDATE sales SET notes = $2, updated_at = $3 WHERE id = $1`, id, nullIfEmpty(notes), at)
	if err != nil {
		return fmt.Errorf("update sale notes: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: venta %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista ventas por filtros, más recientes primero, con el total para paginar.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if f.CustomerPhone != "" {
		args = append(args, f.CustomerPhone)
		where = append(where, fmt.Sprintf("customer_phone = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM sales%s ORDER BY created_at DESC, length(sale_number) DESC, sale_number DESC LIMIT $%d OFFSET $%d`,
		saleColumns, clause, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, list...); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
