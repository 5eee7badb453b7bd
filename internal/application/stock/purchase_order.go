package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/inventory"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// PurchaseOrderUseCase ciclo de vida de las órdenes de compra a proveedor.
// Solo la recepción mueve stock.
type PurchaseOrderUseCase struct {
	txRunner TxRunner
	repos    TxRepos
	master   repository.MasterDataRepository
	audit    AuditSink
	now      func() time.Time
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(txRunner TxRunner, repos TxRepos, master repository.MasterDataRepository, audit AuditSink) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{
		txRunner: txRunner,
		repos:    repos,
		master:   master,
		audit:    auditOrNop(audit),
		now:      time.Now,
	}
}

func purchaseOrderSequence(branchID string) string {
	return "purchase_order:" + branchID
}

// Create registra la orden en DRAFT con número PO-000001 consecutivo por sucursal
// y marca como ORDERED las solicitudes de repuesto vinculadas.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, userID, branchID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	ctx, span := tracer.Start(ctx, "purchase_order.Create", trace.WithAttributes(attribute.String("branch_id", branchID)))
	defer span.End()

	if userID == "" || branchID == "" || in.SupplierID == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal y proveedor son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden debe tener al menos una línea", domain.ErrInvalidInput)
	}
	supplier, err := uc.master.GetSupplier(ctx, in.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("consultar proveedor: %w", err)
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}

	now := uc.now()
	po := &entity.PurchaseOrder{
		ID:                   uuid.New().String(),
		BranchID:             branchID,
		SupplierID:           in.SupplierID,
		Status:               entity.POStatusDraft,
		Notes:                in.Notes,
		CreatedBy:            userID,
		CreatedAt:            now,
		UpdatedAt:            now,
		LinkedPartRequestIDs: in.LinkedPartRequestIDs,
	}
	seen := make(map[string]bool, len(in.Items))
	for _, it := range in.Items {
		if it.PartID == "" {
			return nil, fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
		}
		if !it.Qty.IsPositive() {
			return nil, fmt.Errorf("%w: qty debe ser mayor que cero (repuesto %s)", domain.ErrInvalidInput, it.PartID)
		}
		if it.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit_cost no puede ser negativo (repuesto %s)", domain.ErrInvalidInput, it.PartID)
		}
		if err := requireScale("qty", it.Qty); err != nil {
			return nil, err
		}
		if err := requireScale("unit_cost", it.UnitCost); err != nil {
			return nil, err
		}
		if seen[it.PartID] {
			return nil, fmt.Errorf("%w: repuesto %s repetido en la orden", domain.ErrInvalidInput, it.PartID)
		}
		seen[it.PartID] = true
		if _, err := requirePart(ctx, uc.master, it.PartID); err != nil {
			return nil, err
		}
		po.Items = append(po.Items, &entity.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			PartID:          it.PartID,
			OrderedQty:      it.Qty,
			UnitCost:        it.UnitCost,
			ReceivedQty:     decimal.Zero,
			AvgReceivedCost: decimal.Zero,
		})
	}

	replayed := false
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		prevID, err := reserveKey(ctx, repos, branchID, in.IdempotencyKey, opCreateOrder, po.ID, now)
		if err != nil {
			return err
		}
		if prevID != "" {
			prev, err := repos.Orders.GetByID(ctx, prevID)
			if err != nil {
				return fmt.Errorf("consultar orden original: %w", err)
			}
			if prev == nil {
				return fmt.Errorf("%w: orden %s", domain.ErrNotFound, prevID)
			}
			po = prev
			replayed = true
			return nil
		}

		seq, err := repos.Sequences.Next(ctx, purchaseOrderSequence(branchID))
		if err != nil {
			return fmt.Errorf("numerar orden: %w", err)
		}
		po.OrderNumber = fmt.Sprintf("PO-%06d", seq)

		requests := make([]*entity.PartRequest, 0, len(po.LinkedPartRequestIDs))
		for _, reqID := range po.LinkedPartRequestIDs {
			req, err := repos.PartRequests.GetByID(ctx, reqID)
			if err != nil {
				return fmt.Errorf("consultar solicitud de repuesto: %w", err)
			}
			if req == nil || req.BranchID != branchID {
				return fmt.Errorf("%w: solicitud de repuesto %s", domain.ErrNotFound, reqID)
			}
			if req.Status != entity.PartRequestPending {
				return fmt.Errorf("%w: solicitud %s está en %s", domain.ErrInvalidTransition, reqID, req.Status)
			}
			if po.Item(req.PartID) == nil {
				return fmt.Errorf("%w: la solicitud %s pide un repuesto que no está en la orden", domain.ErrInvalidInput, reqID)
			}
			requests = append(requests, req)
		}

		if err := repos.Orders.Create(ctx, po); err != nil {
			return fmt.Errorf("guardar orden: %w", err)
		}
		for _, req := range requests {
			req.Status = entity.PartRequestOrdered
			req.PurchaseOrderID = po.ID
			req.SupplierID = po.SupplierID
			req.UpdatedAt = now
			if err := repos.PartRequests.Update(ctx, req); err != nil {
				return fmt.Errorf("actualizar solicitud de repuesto: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !replayed {
		uc.publish(ctx, "purchase_order.created", po, userID, now, map[string]any{
			"order_number": po.OrderNumber,
			"supplier_id":  po.SupplierID,
			"items":        len(po.Items),
		})
	}
	return toPurchaseOrderResponse(po), nil
}

// Submit envía la orden al proveedor: DRAFT -> ORDERED.
func (uc *PurchaseOrderUseCase) Submit(ctx context.Context, userID, branchID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, userID, branchID, id, inventory.POActionSubmit, "purchase_order.submitted")
}

// Cancel anula una orden que aún no recibió mercancía: DRAFT|ORDERED -> CANCELLED.
func (uc *PurchaseOrderUseCase) Cancel(ctx context.Context, userID, branchID, id string) (*dto.PurchaseOrderResponse, error) {
	return uc.transition(ctx, userID, branchID, id, inventory.POActionCancel, "purchase_order.cancelled")
}

func (uc *PurchaseOrderUseCase) transition(ctx context.Context, userID, branchID, id string, action inventory.POAction, auditAction string) (*dto.PurchaseOrderResponse, error) {
	ctx, span := tracer.Start(ctx, "purchase_order."+string(action), trace.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("purchase_order_id", id),
	))
	defer span.End()

	if userID == "" || branchID == "" || id == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal y orden son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.now()
	var po *entity.PurchaseOrder
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		var err error
		po, err = lockOrder(ctx, repos, branchID, id)
		if err != nil {
			return err
		}
		next, err := inventory.NextPurchaseOrderStatus(po.Status, action, false)
		if err != nil {
			return err
		}
		po.Status = next
		po.UpdatedAt = now
		if action == inventory.POActionSubmit {
			po.OrderedAt = &now
		}
		if err := repos.Orders.Update(ctx, po); err != nil {
			return fmt.Errorf("actualizar orden: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.publish(ctx, auditAction, po, userID, now, map[string]any{"status": string(po.Status)})
	return toPurchaseOrderResponse(po), nil
}

// Receive registra mercancía recibida contra la orden. Cada línea suma stock en la ubicación
// indicada con un asiento PURCHASE; nada se aplica si alguna línea falla.
func (uc *PurchaseOrderUseCase) Receive(ctx context.Context, userID, branchID, id string, in dto.ReceivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	ctx, span := tracer.Start(ctx, "purchase_order.Receive", trace.WithAttributes(
		attribute.String("branch_id", branchID),
		attribute.String("purchase_order_id", id),
	))
	defer span.End()

	if userID == "" || branchID == "" || id == "" || in.LocationID == "" {
		return nil, fmt.Errorf("%w: usuario, sucursal, orden y ubicación son obligatorios", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la recepción debe tener al menos una línea", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.PartID == "" {
			return nil, fmt.Errorf("%w: part_id es obligatorio", domain.ErrInvalidInput)
		}
		if !it.ReceiveQty.IsPositive() {
			return nil, fmt.Errorf("%w: receive_qty debe ser mayor que cero (repuesto %s)", domain.ErrInvalidInput, it.PartID)
		}
		if it.UnitCost != nil && it.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit_cost no puede ser negativo (repuesto %s)", domain.ErrInvalidInput, it.PartID)
		}
		if err := requireScale("receive_qty", it.ReceiveQty); err != nil {
			return nil, err
		}
		if it.UnitCost != nil {
			if err := requireScale("unit_cost", *it.UnitCost); err != nil {
				return nil, err
			}
		}
	}
	if _, err := requireLocation(ctx, uc.master, branchID, in.LocationID); err != nil {
		return nil, err
	}

	now := uc.now()
	var (
		po       *entity.PurchaseOrder
		entries  []*entity.LedgerEntry
		arrived  []string
		replayed bool
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		prevID, err := reserveKey(ctx, repos, branchID, in.IdempotencyKey, opReceiveOrder+":"+id, id, now)
		if err != nil {
			return err
		}
		if prevID != "" {
			po, err = repos.Orders.GetByID(ctx, prevID)
			if err != nil {
				return fmt.Errorf("consultar orden: %w", err)
			}
			if po == nil {
				return fmt.Errorf("%w: orden %s", domain.ErrNotFound, prevID)
			}
			replayed = true
			return nil
		}

		po, err = lockOrder(ctx, repos, branchID, id)
		if err != nil {
			return err
		}
		if _, err := inventory.NextPurchaseOrderStatus(po.Status, inventory.POActionReceive, false); err != nil {
			return err
		}

		received := make(map[string]bool, len(in.Items))
		lines := sortedByPart(in.Items, func(it dto.ReceiveItemRequest) string { return it.PartID })
		for _, line := range lines {
			item := po.Item(line.PartID)
			if item == nil {
				return fmt.Errorf("%w: repuesto %s", domain.ErrItemNotInOrder, line.PartID)
			}
			if line.ReceiveQty.GreaterThan(item.Outstanding()) {
				return fmt.Errorf("%w: repuesto %s pendiente %s, recibido %s",
					domain.ErrOverReceive, line.PartID, item.Outstanding(), line.ReceiveQty)
			}
			cost := item.UnitCost
			if line.UnitCost != nil {
				cost = *line.UnitCost
			}
			item.AvgReceivedCost = inventory.AverageCost(item.ReceivedQty, item.AvgReceivedCost, line.ReceiveQty, cost)
			item.ReceivedQty = item.ReceivedQty.Add(line.ReceiveQty)

			entry, err := applyMovement(ctx, repos, movement{
				Key:      entity.StockKey{BranchID: branchID, LocationID: in.LocationID, PartID: line.PartID},
				Type:     entity.MovementPurchase,
				RefType:  entity.ReferencePurchaseOrder,
				RefID:    po.ID,
				Delta:    line.ReceiveQty,
				UnitCost: &cost,
				Notes:    po.OrderNumber,
				Actor:    userID,
				At:       now,
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			received[line.PartID] = true
		}

		next, err := inventory.NextPurchaseOrderStatus(po.Status, inventory.POActionReceive, po.FullyReceived())
		if err != nil {
			return err
		}
		po.Status = next
		po.UpdatedAt = now
		if next == entity.POStatusReceived {
			po.ReceivedAt = &now
		}
		if err := repos.Orders.Update(ctx, po); err != nil {
			return fmt.Errorf("actualizar orden: %w", err)
		}

		for _, reqID := range po.LinkedPartRequestIDs {
			req, err := repos.PartRequests.GetByID(ctx, reqID)
			if err != nil {
				return fmt.Errorf("consultar solicitud de repuesto: %w", err)
			}
			if req == nil || req.Status != entity.PartRequestOrdered || !received[req.PartID] {
				continue
			}
			req.Status = entity.PartRequestArrived
			req.UpdatedAt = now
			if err := repos.PartRequests.Update(ctx, req); err != nil {
				return fmt.Errorf("actualizar solicitud de repuesto: %w", err)
			}
			arrived = append(arrived, req.ID)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !replayed {
		recordMovements(ctx, entries...)
		uc.publish(ctx, "purchase_order.received", po, userID, now, map[string]any{
			"status":                string(po.Status),
			"location_id":           in.LocationID,
			"lines":                 len(entries),
			"part_requests_arrived": arrived,
		})
	}
	return toPurchaseOrderResponse(po), nil
}

// Get devuelve la orden si pertenece a la sucursal.
func (uc *PurchaseOrderUseCase) Get(ctx context.Context, branchID, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar orden: %w", err)
	}
	if po == nil || po.BranchID != branchID {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return toPurchaseOrderResponse(po), nil
}

// List lista las órdenes de la sucursal, opcionalmente por estado.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, branchID, status string, page dto.PageRequest) (*dto.PurchaseOrderListResponse, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	st := entity.PurchaseOrderStatus(status)
	switch st {
	case "", entity.POStatusDraft, entity.POStatusOrdered, entity.POStatusPartiallyReceived,
		entity.POStatusReceived, entity.POStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: estado %s", domain.ErrInvalidInput, status)
	}
	limit, offset := pageBounds(page.Limit, page.Offset)
	orders, total, err := uc.repos.Orders.List(ctx, repository.PurchaseOrderFilter{
		BranchID: branchID, Status: st, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listar órdenes: %w", err)
	}
	out := &dto.PurchaseOrderListResponse{
		Items: make([]dto.PurchaseOrderResponse, 0, len(orders)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, po := range orders {
		out.Items = append(out.Items, *toPurchaseOrderResponse(po))
	}
	return out, nil
}

// lockOrder bloquea la orden y verifica que sea de la sucursal.
func lockOrder(ctx context.Context, repos TxRepos, branchID, id string) (*entity.PurchaseOrder, error) {
	po, err := repos.Orders.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar orden: %w", err)
	}
	if po == nil || po.BranchID != branchID {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return po, nil
}

func (uc *PurchaseOrderUseCase) publish(ctx context.Context, action string, po *entity.PurchaseOrder, userID string, at time.Time, details map[string]any) {
	uc.audit.Record(ctx, AuditEvent{
		Action:     action,
		EntityType: "purchase_order",
		EntityID:   po.ID,
		BranchID:   po.BranchID,
		ActorID:    userID,
		OccurredAt: at,
		Details:    details,
	})
}
