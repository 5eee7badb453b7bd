package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `
	id, transfer_number, from_branch_id, from_location_id, to_branch_id, to_location_id,
	status, notes, created_by, requested_at, shipped_at, received_at, cancelled_at, created_at, updated_at`

// Create inserta el traslado y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.TransferNumber, t.FromBranchID, t.FromLocationID, t.ToBranchID, t.ToLocationID,
		string(t.Status), nullIfEmpty(t.Notes), t.CreatedBy,
		t.RequestedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de traslado %s", domain.ErrDuplicate, t.TransferNumber)
		}
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	for _, it := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_transfer_items (id, transfer_id, part_id, qty) VALUES ($1, $2, $3, $4)`,
			it.ID, t.ID, it.PartID, it.Qty,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: repuesto %s repetido en el traslado", domain.ErrInvalidInput, it.PartID)
			}
			return fmt.Errorf("insert stock transfer item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el traslado con sus líneas o nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene el traslado y bloquea su fila (SELECT FOR UPDATE).
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t      entity.StockTransfer
		status string
		notes  *string
	)
	if err := row.Scan(
		&t.ID, &t.TransferNumber, &t.FromBranchID, &t.FromLocationID, &t.ToBranchID, &t.ToLocationID,
		&status, &notes, &t.CreatedBy, &t.RequestedAt, &t.ShippedAt, &t.ReceivedAt, &t.CancelledAt,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.Notes = derefString(notes)
	return &t, nil
}

func (r *TransferRepo) loadItems(ctx context.Context, t *entity.StockTransfer) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, part_id, qty FROM stock_transfer_items
		WHERE transfer_id = $1 ORDER BY part_id`, t.ID)
	if err != nil {
		return fmt.Errorf("get stock transfer items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockTransferItem, error) {
		var it entity.StockTransferItem
		err := row.Scan(&it.ID, &it.TransferID, &it.PartID, &it.Qty)
		return &it, err
	})
	if err != nil {
		return fmt.Errorf("scan stock transfer items: %w", err)
	}
	t.Items = items
	return nil
}

// Update guarda estado y fechas.
func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_transfers
		SET status = $2, requested_at = $3, shipped_at = $4, received_at = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $1`,
		t.ID, string(t.Status), t.RequestedAt, t.ShippedAt, t.ReceivedAt, t.CancelledAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	return nil
}

// List traslados de la sucursal según dirección y estado.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	where := `
		FROM stock_transfers
		WHERE (($2 = 'outgoing' AND from_branch_id::text = $1)
		    OR ($2 = 'incoming' AND to_branch_id::text = $1)
		    OR ($2 = '' AND (from_branch_id::text = $1 OR to_branch_id::text = $1)))
		  AND ($3 = '' OR status = $3)`
	args := []any{f.BranchID, f.Direction, string(f.Status)}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transfers: %w", err)
	}
	limit, offset := limitOffset(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+transferColumns+where+`
		ORDER BY created_at DESC, transfer_number DESC LIMIT $4 OFFSET $5`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock transfers: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.StockTransfer, error) {
		return scanTransfer(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan stock transfers: %w", err)
	}
	for _, t := range list {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}
