package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderItemRequest línea para crear una orden de compra.
type PurchaseOrderItemRequest struct {
	PartID   string          `json:"part_id"`
	Qty      decimal.Decimal `json:"qty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID           string                     `json:"supplier_id"`
	Notes                string                     `json:"notes,omitempty"`
	Items                []PurchaseOrderItemRequest `json:"items"`
	LinkedPartRequestIDs []string                   `json:"linked_part_request_ids,omitempty"`
	IdempotencyKey       string                     `json:"-"`
}

// ReceiveItemRequest línea recibida. UnitCost nil toma el costo de la orden.
type ReceiveItemRequest struct {
	PartID     string           `json:"part_id"`
	ReceiveQty decimal.Decimal  `json:"receive_qty"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
type ReceivePurchaseOrderRequest struct {
	LocationID     string               `json:"location_id"`
	Items          []ReceiveItemRequest `json:"items"`
	IdempotencyKey string               `json:"-"`
}

// PurchaseOrderItemResponse línea de la orden.
type PurchaseOrderItemResponse struct {
	PartID          string          `json:"part_id"`
	OrderedQty      decimal.Decimal `json:"ordered_qty"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	ReceivedQty     decimal.Decimal `json:"received_qty"`
	AvgReceivedCost decimal.Decimal `json:"avg_received_cost"`
}

// PurchaseOrderResponse orden de compra con sus líneas.
type PurchaseOrderResponse struct {
	ID                   string                      `json:"id"`
	BranchID             string                      `json:"branch_id"`
	SupplierID           string                      `json:"supplier_id"`
	OrderNumber          string                      `json:"order_number"`
	Status               string                      `json:"status"`
	Notes                string                      `json:"notes,omitempty"`
	CreatedBy            string                      `json:"created_by"`
	OrderedAt            *time.Time                  `json:"ordered_at,omitempty"`
	ReceivedAt           *time.Time                  `json:"received_at,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Items                []PurchaseOrderItemResponse `json:"items"`
	LinkedPartRequestIDs []string                    `json:"linked_part_request_ids,omitempty"`
}

// PurchaseOrderListResponse lista paginada de órdenes.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
