package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea del traslado.
type TransferItemRequest struct {
	PartID string          `json:"part_id"`
	Qty    decimal.Decimal `json:"qty"`
}

// CreateTransferRequest body para POST /api/transfers. La sucursal de origen es la del token.
type CreateTransferRequest struct {
	FromLocationID string                `json:"from_location_id"`
	ToBranchID     string                `json:"to_branch_id"`
	ToLocationID   string                `json:"to_location_id"`
	Notes          string                `json:"notes,omitempty"`
	Items          []TransferItemRequest `json:"items"`
	IdempotencyKey string                `json:"-"`
}

// TransferItemResponse línea del traslado.
type TransferItemResponse struct {
	PartID string          `json:"part_id"`
	Qty    decimal.Decimal `json:"qty"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID             string                 `json:"id"`
	TransferNumber string                 `json:"transfer_number"`
	FromBranchID   string                 `json:"from_branch_id"`
	FromLocationID string                 `json:"from_location_id"`
	ToBranchID     string                 `json:"to_branch_id"`
	ToLocationID   string                 `json:"to_location_id"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	RequestedAt    *time.Time             `json:"requested_at,omitempty"`
	ShippedAt      *time.Time             `json:"shipped_at,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Items          []TransferItemResponse `json:"items"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InTransitLine cantidad despachada y aún no recibida de un repuesto.
type InTransitLine struct {
	TransferID     string          `json:"transfer_id"`
	TransferNumber string          `json:"transfer_number"`
	FromBranchID   string          `json:"from_branch_id"`
	ToBranchID     string          `json:"to_branch_id"`
	PartID         string          `json:"part_id"`
	Qty            decimal.Decimal `json:"qty"`
	ShippedAt      *time.Time      `json:"shipped_at,omitempty"`
}
