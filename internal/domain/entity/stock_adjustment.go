package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAdjustment corrección directa de un saldo con motivo obligatorio.
// Se crea junto con su movimiento; no tiene ciclo de vida posterior.
type StockAdjustment struct {
	ID string
	StockKey
	QuantityDelta decimal.Decimal
	Reason        string
	CreatedBy     string
	ApprovedBy    string // vacío si no requirió aprobación
	LedgerEntryID string
	CreatedAt     time.Time
}
