package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumePartRequest body para POST /api/jobs/:jobId/parts.
type ConsumePartRequest struct {
	LocationID     string           `json:"location_id"`
	PartID         string           `json:"part_id"`
	Qty            decimal.Decimal  `json:"qty"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	IdempotencyKey string           `json:"-"`
}

// PartUsageResponse registro de consumo que luego lee facturación.
type PartUsageResponse struct {
	ID            string           `json:"id"`
	BranchID      string           `json:"branch_id"`
	JobID         string           `json:"job_id"`
	LocationID    string           `json:"location_id"`
	PartID        string           `json:"part_id"`
	Qty           decimal.Decimal  `json:"qty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	UsedBy        string           `json:"used_by"`
	UsedAt        time.Time        `json:"used_at"`
	LedgerEntryID string           `json:"ledger_entry_id"`
}
