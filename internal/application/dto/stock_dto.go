package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	LocationID     string          `json:"location_id"`
	PartID         string          `json:"part_id"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"` // positivo suma, negativo resta; nunca 0
	Reason         string          `json:"reason"`
	ApprovedBy     string          `json:"approved_by,omitempty"`
	IdempotencyKey string          `json:"-"`
}

// AdjustmentResponse ajuste aplicado.
type AdjustmentResponse struct {
	ID            string          `json:"id"`
	BranchID      string          `json:"branch_id"`
	LocationID    string          `json:"location_id"`
	PartID        string          `json:"part_id"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	Reason        string          `json:"reason"`
	CreatedBy     string          `json:"created_by"`
	ApprovedBy    string          `json:"approved_by,omitempty"`
	LedgerEntryID string          `json:"ledger_entry_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockBalanceResponse saldo de un repuesto en una ubicación.
type StockBalanceResponse struct {
	BranchID       string          `json:"branch_id"`
	LocationID     string          `json:"location_id"`
	PartID         string          `json:"part_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// StockListResponse lista paginada de saldos.
type StockListResponse struct {
	Items []StockBalanceResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// LedgerQuery filtros de GET /api/stock/ledger.
type LedgerQuery struct {
	LocationID   string `query:"location_id"`
	PartID       string `query:"part_id"`
	MovementType string `query:"movement_type"`
	PageRequest
}

// LedgerEntryResponse asiento del libro de movimientos.
type LedgerEntryResponse struct {
	ID            string           `json:"id"`
	BranchID      string           `json:"branch_id"`
	LocationID    string           `json:"location_id"`
	PartID        string           `json:"part_id"`
	MovementType  string           `json:"movement_type"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   string           `json:"reference_id"`
	QuantityDelta decimal.Decimal  `json:"quantity_delta"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	PerformedBy   string           `json:"performed_by"`
	PerformedAt   time.Time        `json:"performed_at"`
}

// LedgerListResponse página de asientos, del más reciente al más antiguo.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// ReconciliationLine diferencia entre el saldo y la suma del libro para una clave.
type ReconciliationLine struct {
	LocationID     string          `json:"location_id"`
	PartID         string          `json:"part_id"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	LedgerSum      decimal.Decimal `json:"ledger_sum"`
	Difference     decimal.Decimal `json:"difference"`
}

// ReconciliationResponse resultado de la conciliación de una sucursal.
type ReconciliationResponse struct {
	BranchID      string               `json:"branch_id"`
	KeysChecked   int                  `json:"keys_checked"`
	Consistent    bool                 `json:"consistent"`
	Discrepancies []ReconciliationLine `json:"discrepancies"`
}
