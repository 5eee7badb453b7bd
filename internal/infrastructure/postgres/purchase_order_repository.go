package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador.
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

const purchaseOrderColumns = `
	id, branch_id, supplier_id, order_number, status, notes, created_by,
	ordered_at, received_at, created_at, updated_at`

// Create inserta cabecera, líneas y vínculos con solicitudes de repuesto.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		po.ID, po.BranchID, po.SupplierID, po.OrderNumber, string(po.Status), nullIfEmpty(po.Notes), po.CreatedBy,
		po.OrderedAt, po.ReceivedAt, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de orden %s", domain.ErrDuplicate, po.OrderNumber)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, it := range po.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_items (
				id, purchase_order_id, part_id, ordered_qty, unit_cost, received_qty, avg_received_cost
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, po.ID, it.PartID, it.OrderedQty, it.UnitCost, it.ReceivedQty, it.AvgReceivedCost,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: repuesto %s repetido en la orden", domain.ErrInvalidInput, it.PartID)
			}
			return fmt.Errorf("insert purchase order item: %w", err)
		}
	}
	for _, reqID := range po.LinkedPartRequestIDs {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_part_requests (purchase_order_id, part_request_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, po.ID, reqID)
		if err != nil {
			return fmt.Errorf("link part request: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas o nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate obtiene la orden y bloquea la cabecera (SELECT FOR UPDATE).
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	po, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if err := r.loadDetails(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var (
		po     entity.PurchaseOrder
		status string
		notes  *string
	)
	if err := row.Scan(
		&po.ID, &po.BranchID, &po.SupplierID, &po.OrderNumber, &status, &notes, &po.CreatedBy,
		&po.OrderedAt, &po.ReceivedAt, &po.CreatedAt, &po.UpdatedAt,
	); err != nil {
		return nil, err
	}
	po.Status = entity.PurchaseOrderStatus(status)
	po.Notes = derefString(notes)
	return &po, nil
}

func (r *PurchaseOrderRepo) loadDetails(ctx context.Context, po *entity.PurchaseOrder) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, part_id, ordered_qty, unit_cost, received_qty, avg_received_cost
		FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY part_id`, po.ID)
	if err != nil {
		return fmt.Errorf("get purchase order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.PurchaseOrderItem, error) {
		var it entity.PurchaseOrderItem
		err := row.Scan(&it.ID, &it.PurchaseOrderID, &it.PartID, &it.OrderedQty, &it.UnitCost, &it.ReceivedQty, &it.AvgReceivedCost)
		return &it, err
	})
	if err != nil {
		return fmt.Errorf("scan purchase order items: %w", err)
	}
	po.Items = items

	rows, err = r.q.Query(ctx, `
		SELECT part_request_id FROM purchase_order_part_requests
		WHERE purchase_order_id = $1 ORDER BY part_request_id`, po.ID)
	if err != nil {
		return fmt.Errorf("get linked part requests: %w", err)
	}
	links, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan linked part requests: %w", err)
	}
	if len(links) > 0 {
		po.LinkedPartRequestIDs = links
	}
	return nil
}

// Update guarda estado, fechas y lo recibido por línea.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $2, ordered_at = $3, received_at = $4, updated_at = $5
		WHERE id = $1`,
		po.ID, string(po.Status), po.OrderedAt, po.ReceivedAt, po.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, po.ID)
	}
	for _, it := range po.Items {
		_, err := r.q.Exec(ctx, `
			UPDATE purchase_order_items SET received_qty = $2, avg_received_cost = $3 WHERE id = $1`,
			it.ID, it.ReceivedQty, it.AvgReceivedCost,
		)
		if err != nil {
			if isCheckViolation(err) {
				return fmt.Errorf("%w: repuesto %s", domain.ErrOverReceive, it.PartID)
			}
			return fmt.Errorf("update purchase order item: %w", err)
		}
	}
	return nil
}

// List órdenes de la sucursal, de la más reciente a la más antigua.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	where := ` FROM purchase_orders WHERE branch_id = $1 AND ($2 = '' OR status = $2)`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*)`+where, f.BranchID, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchase orders: %w", err)
	}
	limit, offset := limitOffset(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, `SELECT `+purchaseOrderColumns+where+`
		ORDER BY created_at DESC, order_number DESC LIMIT $3 OFFSET $4`,
		f.BranchID, string(f.Status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entity.PurchaseOrder, error) {
		return scanPurchaseOrder(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan purchase orders: %w", err)
	}
	for _, po := range list {
		if err := r.loadDetails(ctx, po); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

var _ repository.PartRequestRepository = (*PartRequestRepo)(nil)

// PartRequestRepo solicitudes de repuesto (tabla del módulo de órdenes de trabajo).
type PartRequestRepo struct {
	q Querier
}

// NewPartRequestRepository construye el adaptador.
func NewPartRequestRepository(q Querier) *PartRequestRepo {
	return &PartRequestRepo{q: q}
}

// GetByID obtiene y bloquea la solicitud; nil si no existe.
func (r *PartRequestRepo) GetByID(ctx context.Context, id string) (*entity.PartRequest, error) {
	var (
		req      entity.PartRequest
		status   string
		poID     *string
		supplier *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, branch_id, job_id, part_id, qty, status, purchase_order_id, supplier_id, updated_at
		FROM part_requests WHERE id = $1 FOR UPDATE`, id).Scan(
		&req.ID, &req.BranchID, &req.JobID, &req.PartID, &req.Qty, &status, &poID, &supplier, &req.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part request: %w", err)
	}
	req.Status = entity.PartRequestStatus(status)
	req.PurchaseOrderID = derefString(poID)
	req.SupplierID = derefString(supplier)
	return &req, nil
}

// Update guarda estado y vínculo con la orden de compra.
func (r *PartRequestRepo) Update(ctx context.Context, req *entity.PartRequest) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE part_requests
		SET status = $2, purchase_order_id = $3, supplier_id = $4, updated_at = $5
		WHERE id = $1`,
		req.ID, string(req.Status), nullIfEmpty(req.PurchaseOrderID), nullIfEmpty(req.SupplierID), req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update part request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, req.ID)
	}
	return nil
}
