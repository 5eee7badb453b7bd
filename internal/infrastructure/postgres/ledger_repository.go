package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos sobre PostgreSQL. No existen UPDATE ni DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta el asiento.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (
			id, branch_id, location_id, part_id, movement_type, reference_type, reference_id,
			quantity_delta, unit_cost, notes, performed_by, performed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.BranchID, e.LocationID, e.PartID, string(e.MovementType), string(e.ReferenceType), e.ReferenceID,
		e.QuantityDelta, e.UnitCost, nullIfEmpty(e.Notes), e.PerformedBy, e.PerformedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// List asientos del más reciente al más antiguo.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	where := `
		FROM stock_ledger
		WHERE branch_id = $1
		  AND ($2 = '' OR location_id::text = $2)
		  AND ($3 = '' OR part_id::text = $3)
		  AND ($4 = '' OR movement_type = $4)
		  AND ($5 = '' OR reference_type = $5)
		  AND ($6 = '' OR reference_id = $6)
		  AND ($7::timestamptz IS NULL OR performed_at >= $7)
		  AND ($8::timestamptz IS NULL OR performed_at <= $8)`
	args := []any{
		f.BranchID, f.LocationID, f.PartID, string(f.MovementType),
		string(f.ReferenceType), f.ReferenceID, f.From, f.To,
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger: %w", err)
	}
	limit, offset := limitOffset(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `
		SELECT id, branch_id, location_id, part_id, movement_type, reference_type, reference_id,
		       quantity_delta, unit_cost, notes, performed_by, performed_at `+where+`
		ORDER BY performed_at DESC, seq DESC
		LIMIT $9 OFFSET $10`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	list := []*entity.LedgerEntry{}
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e             entity.LedgerEntry
		movementType  string
		referenceType string
		notes         *string
	)
	err := row.Scan(
		&e.ID, &e.BranchID, &e.LocationID, &e.PartID, &movementType, &referenceType, &e.ReferenceID,
		&e.QuantityDelta, &e.UnitCost, &notes, &e.PerformedBy, &e.PerformedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	e.MovementType = entity.MovementType(movementType)
	e.ReferenceType = entity.ReferenceType(referenceType)
	e.Notes = derefString(notes)
	return &e, nil
}

// SumByKey suma de deltas por clave de la sucursal.
func (r *LedgerRepo) SumByKey(ctx context.Context, branchID string) (map[entity.StockKey]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT location_id, part_id, SUM(quantity_delta)
		FROM stock_ledger WHERE branch_id = $1
		GROUP BY location_id, part_id`, branchID)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}
	defer rows.Close()

	sums := map[entity.StockKey]decimal.Decimal{}
	for rows.Next() {
		k := entity.StockKey{BranchID: branchID}
		var sum decimal.Decimal
		if err := rows.Scan(&k.LocationID, &k.PartID, &sum); err != nil {
			return nil, fmt.Errorf("scan ledger sum: %w", err)
		}
		sums[k] = sum
	}
	return sums, rows.Err()
}
