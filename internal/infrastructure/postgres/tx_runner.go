package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/metrics"
)

// Ensure TxRunner implements sales.TxRunner.
var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL acotada por timeout.
// Las fallas transitorias (serialización, deadlock, lock timeout) se reintentan hasta maxAttempts.
type TxRunner struct {
	pool        *pgxpool.Pool
	timeout     time.Duration
	maxAttempts int
	backoff     time.Duration
	lockTimeout time.Duration
	metrics     *metrics.SalesMetrics
}

// TxOptions parámetros del runner.
type TxOptions struct {
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	Metrics     *metrics.SalesMetrics
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, opts TxOptions) *TxRunner {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 20 * time.Millisecond
	}
	return &TxRunner{
		pool:        pool,
		timeout:     opts.Timeout,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.Backoff,
		lockTimeout: lockTimeoutFor(opts.Timeout, opts.MaxAttempts),
		metrics:     opts.Metrics,
	}
}

// minLockTimeout piso del lock_timeout por intento; por debajo un bloqueo normal ya fallaría.
const minLockTimeout = 50 * time.Millisecond

// lockTimeoutFor reparte el presupuesto total entre los intentos para que un 55P03 deje margen
// al reintento antes de que venza el contexto.
func lockTimeoutFor(total time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	per := total / time.Duration(attempts)
	if per < minLockTimeout {
		return minLockTimeout
	}
	return per
}

// RunSales inicia una transacción con los repos de ventas, ejecuta fn y hace Commit o Rollback.
// Todos los intentos comparten el mismo timeout total.
func (r *TxRunner) RunSales(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	sequence repository.SaleSequence,
	eventRepo repository.SaleEventRepository,
) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = classify(r.runOnce(ctx, fn))
		if err == nil || !errors.Is(err, domain.ErrTransientStore) {
			return err
		}
		if attempt == r.maxAttempts || ctx.Err() != nil {
			break
		}
		r.metrics.RecordTxRetry()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", domain.ErrTransientStore, ctx.Err())
		case <-time.After(r.backoff * time.Duration(attempt)):
		}
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	sequence repository.SaleSequence,
	eventRepo repository.SaleEventRepository,
) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if err := fn(
		NewProductRepository(tx),
		NewSaleRepository(tx),
		NewSaleSequence(tx),
		NewSaleEventRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
