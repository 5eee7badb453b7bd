package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/taller-stock/internal/application/stock"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los saldos se protegen con el UPSERT condicional; órdenes y traslados con FOR UPDATE.
func (r *TxRunner) Run(ctx context.Context, fn func(repos stock.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunReadOnly abre una transacción REPEATABLE READ de solo lectura: todas las consultas de fn
// comparten la misma instantánea.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(repos stock.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit read-only transaction: %w", err)
	}
	return nil
}

// NewRepos arma todos los repositorios sobre q (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) stock.TxRepos {
	return stock.TxRepos{
		Balances:     NewStockBalanceRepository(q),
		Ledger:       NewLedgerRepository(q),
		Adjustments:  NewAdjustmentRepository(q),
		Orders:       NewPurchaseOrderRepository(q),
		Transfers:    NewTransferRepository(q),
		Usages:       NewPartUsageRepository(q),
		PartRequests: NewPartRequestRepository(q),
		Sequences:    NewSequenceRepository(q),
		Idempotency:  NewIdempotencyRepository(q),
	}
}
