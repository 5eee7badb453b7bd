package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo saldos sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

// ApplyMovement suma delta en un único UPSERT condicional. La fila queda bloqueada hasta el fin
// de la transacción; si el resultado sería negativo no se devuelve fila y nada cambia.
func (r *StockBalanceRepo) ApplyMovement(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO stock_balances (branch_id, location_id, part_id, quantity_on_hand, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (branch_id, location_id, part_id) DO UPDATE
		SET quantity_on_hand = stock_balances.quantity_on_hand + EXCLUDED.quantity_on_hand,
		    updated_at = now()
		WHERE stock_balances.quantity_on_hand + EXCLUDED.quantity_on_hand >= 0
		RETURNING quantity_on_hand`
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, query, key.BranchID, key.LocationID, key.PartID, delta).Scan(&qty)
	if err != nil {
		// Sin fila: el WHERE del UPSERT rechazó el débito. Violación del CHECK: débito sobre fila nueva.
		if errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err) {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return decimal.Zero, fmt.Errorf("apply movement: %w", err)
	}
	return qty, nil
}

// Get obtiene el saldo; si no hay fila devuelve cantidad cero.
func (r *StockBalanceRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	query := `
		SELECT quantity_on_hand, updated_at
		FROM stock_balances WHERE branch_id = $1 AND location_id = $2 AND part_id = $3`
	b := &entity.StockBalance{StockKey: key}
	err := r.q.QueryRow(ctx, query, key.BranchID, key.LocationID, key.PartID).Scan(&b.QuantityOnHand, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			b.QuantityOnHand = decimal.Zero
			return b, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// Query lista saldos paginados ordenados por ubicación y repuesto.
func (r *StockBalanceRepo) Query(ctx context.Context, f repository.StockFilter) ([]*entity.StockBalance, int, error) {
	where := `
		FROM stock_balances
		WHERE branch_id = $1
		  AND ($2 = '' OR location_id::text = $2)
		  AND ($3 = '' OR part_id::text = $3)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) `+where, f.BranchID, f.LocationID, f.PartID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock balances: %w", err)
	}
	limit, offset := limitOffset(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `
		SELECT branch_id, location_id, part_id, quantity_on_hand, updated_at `+where+`
		ORDER BY location_id, part_id
		LIMIT $4 OFFSET $5`, f.BranchID, f.LocationID, f.PartID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query stock balances: %w", err)
	}
	defer rows.Close()

	list := []*entity.StockBalance{}
	for rows.Next() {
		var b entity.StockBalance
		if err := rows.Scan(&b.BranchID, &b.LocationID, &b.PartID, &b.QuantityOnHand, &b.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, &b)
	}
	return list, total, rows.Err()
}
