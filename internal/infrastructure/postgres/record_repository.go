package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var (
	_ repository.AdjustmentRepository  = (*AdjustmentRepo)(nil)
	_ repository.PartUsageRepository   = (*PartUsageRepo)(nil)
	_ repository.SequenceRepository    = (*SequenceRepo)(nil)
	_ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)
)

// AdjustmentRepo ajustes de stock.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador.
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_adjustments (
			id, branch_id, location_id, part_id, quantity_delta, reason, created_by, approved_by, ledger_entry_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.BranchID, a.LocationID, a.PartID, a.QuantityDelta, a.Reason, a.CreatedBy,
		nullIfEmpty(a.ApprovedBy), a.LedgerEntryID, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	var (
		a          entity.StockAdjustment
		approvedBy *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, branch_id, location_id, part_id, quantity_delta, reason, created_by, approved_by, ledger_entry_id, created_at
		FROM stock_adjustments WHERE id = $1`, id).Scan(
		&a.ID, &a.BranchID, &a.LocationID, &a.PartID, &a.QuantityDelta, &a.Reason, &a.CreatedBy,
		&approvedBy, &a.LedgerEntryID, &a.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock adjustment: %w", err)
	}
	a.ApprovedBy = derefString(approvedBy)
	return &a, nil
}

// PartUsageRepo consumos de repuestos en órdenes de trabajo.
type PartUsageRepo struct {
	q Querier
}

// NewPartUsageRepository construye el adaptador.
func NewPartUsageRepository(q Querier) *PartUsageRepo {
	return &PartUsageRepo{q: q}
}

const partUsageColumns = `
	id, branch_id, job_id, location_id, part_id, qty, unit_price, notes, used_by, used_at, ledger_entry_id`

func (r *PartUsageRepo) Create(ctx context.Context, u *entity.PartUsage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO part_usages (`+partUsageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.BranchID, u.JobID, u.LocationID, u.PartID, u.Qty, u.UnitPrice,
		nullIfEmpty(u.Notes), u.UsedBy, u.UsedAt, u.LedgerEntryID,
	)
	if err != nil {
		return fmt.Errorf("insert part usage: %w", err)
	}
	return nil
}

func scanPartUsage(row pgx.Row) (*entity.PartUsage, error) {
	var (
		u     entity.PartUsage
		notes *string
	)
	if err := row.Scan(
		&u.ID, &u.BranchID, &u.JobID, &u.LocationID, &u.PartID, &u.Qty, &u.UnitPrice,
		&notes, &u.UsedBy, &u.UsedAt, &u.LedgerEntryID,
	); err != nil {
		return nil, err
	}
	u.Notes = derefString(notes)
	return &u, nil
}

func (r *PartUsageRepo) GetByID(ctx context.Context, id string) (*entity.PartUsage, error) {
	u, err := scanPartUsage(r.q.QueryRow(ctx, `SELECT `+partUsageColumns+` FROM part_usages WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part usage: %w", err)
	}
	return u, nil
}

// ListByJob consumos de la orden de trabajo en orden de registro.
func (r *PartUsageRepo) ListByJob(ctx context.Context, branchID, jobID string) ([]*entity.PartUsage, error) {
	rows, err := r.q.Query(ctx, `SELECT `+partUsageColumns+`
		FROM part_usages WHERE branch_id = $1 AND job_id = $2 ORDER BY used_at, id`, branchID, jobID)
	if err != nil {
		return nil, fmt.Errorf("list part usages: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.PartUsage, error) {
		return scanPartUsage(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan part usages: %w", err)
	}
	return list, nil
}

// SequenceRepo consecutivos de documentos (document_sequences).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo del alcance. La fila queda bloqueada hasta el
// fin de la transacción, así dos órdenes nunca reciben el mismo número.
func (r *SequenceRepo) Next(ctx context.Context, scope string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO document_sequences (scope, last_value) VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`, scope).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", scope, err)
	}
	return n, nil
}

// IdempotencyRepo claves de idempotencia.
type IdempotencyRepo struct {
	q Querier
}

// NewIdempotencyRepository construye el adaptador.
func NewIdempotencyRepository(q Querier) *IdempotencyRepo {
	return &IdempotencyRepo{q: q}
}

// Reserve inserta la clave; si ya existía devuelve el registro original.
// Una tx concurrente con la misma clave espera en el índice único hasta que la primera termine.
func (r *IdempotencyRepo) Reserve(ctx context.Context, rec *entity.IdempotencyRecord) (*entity.IdempotencyRecord, error) {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO idempotency_keys (branch_id, key, operation, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (branch_id, key) DO NOTHING`,
		rec.BranchID, rec.Key, rec.Operation, rec.ReferenceID, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil, nil
	}
	var prev entity.IdempotencyRecord
	err = r.q.QueryRow(ctx, `
		SELECT branch_id, key, operation, reference_id, created_at
		FROM idempotency_keys WHERE branch_id = $1 AND key = $2`, rec.BranchID, rec.Key).Scan(
		&prev.BranchID, &prev.Key, &prev.Operation, &prev.ReferenceID, &prev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return &prev, nil
}
