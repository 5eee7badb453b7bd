package stock

import (
	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

func toBalanceResponse(b *entity.StockBalance) dto.StockBalanceResponse {
	return dto.StockBalanceResponse{
		BranchID:       b.BranchID,
		LocationID:     b.LocationID,
		PartID:         b.PartID,
		QuantityOnHand: b.QuantityOnHand,
		UpdatedAt:      b.UpdatedAt,
	}
}

func toLedgerResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:            e.ID,
		BranchID:      e.BranchID,
		LocationID:    e.LocationID,
		PartID:        e.PartID,
		MovementType:  string(e.MovementType),
		ReferenceType: string(e.ReferenceType),
		ReferenceID:   e.ReferenceID,
		QuantityDelta: e.QuantityDelta,
		UnitCost:      e.UnitCost,
		Notes:         e.Notes,
		PerformedBy:   e.PerformedBy,
		PerformedAt:   e.PerformedAt,
	}
}

func toAdjustmentResponse(a *entity.StockAdjustment) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		ID:            a.ID,
		BranchID:      a.BranchID,
		LocationID:    a.LocationID,
		PartID:        a.PartID,
		QuantityDelta: a.QuantityDelta,
		Reason:        a.Reason,
		CreatedBy:     a.CreatedBy,
		ApprovedBy:    a.ApprovedBy,
		LedgerEntryID: a.LedgerEntryID,
		CreatedAt:     a.CreatedAt,
	}
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	if po == nil {
		return nil
	}
	items := make([]dto.PurchaseOrderItemResponse, 0, len(po.Items))
	for _, it := range po.Items {
		items = append(items, dto.PurchaseOrderItemResponse{
			PartID:          it.PartID,
			OrderedQty:      it.OrderedQty,
			UnitCost:        it.UnitCost,
			ReceivedQty:     it.ReceivedQty,
			AvgReceivedCost: it.AvgReceivedCost,
		})
	}
	return &dto.PurchaseOrderResponse{
		ID:                   po.ID,
		BranchID:             po.BranchID,
		SupplierID:           po.SupplierID,
		OrderNumber:          po.OrderNumber,
		Status:               string(po.Status),
		Notes:                po.Notes,
		CreatedBy:            po.CreatedBy,
		OrderedAt:            po.OrderedAt,
		ReceivedAt:           po.ReceivedAt,
		CreatedAt:            po.CreatedAt,
		UpdatedAt:            po.UpdatedAt,
		Items:                items,
		LinkedPartRequestIDs: po.LinkedPartRequestIDs,
	}
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{PartID: it.PartID, Qty: it.Qty})
	}
	return &dto.TransferResponse{
		ID:             t.ID,
		TransferNumber: t.TransferNumber,
		FromBranchID:   t.FromBranchID,
		FromLocationID: t.FromLocationID,
		ToBranchID:     t.ToBranchID,
		ToLocationID:   t.ToLocationID,
		Status:         string(t.Status),
		Notes:          t.Notes,
		CreatedBy:      t.CreatedBy,
		RequestedAt:    t.RequestedAt,
		ShippedAt:      t.ShippedAt,
		ReceivedAt:     t.ReceivedAt,
		CancelledAt:    t.CancelledAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Items:          items,
	}
}

func toUsageResponse(u *entity.PartUsage) *dto.PartUsageResponse {
	if u == nil {
		return nil
	}
	return &dto.PartUsageResponse{
		ID:            u.ID,
		BranchID:      u.BranchID,
		JobID:         u.JobID,
		LocationID:    u.LocationID,
		PartID:        u.PartID,
		Qty:           u.Qty,
		UnitPrice:     u.UnitPrice,
		Notes:         u.Notes,
		UsedBy:        u.UsedBy,
		UsedAt:        u.UsedAt,
		LedgerEntryID: u.LedgerEntryID,
	}
}
