package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartUsage consumo de un repuesto en una orden de trabajo del taller.
// Lo lee facturación para cobrar los repuestos usados.
type PartUsage struct {
	ID            string
	BranchID      string
	JobID         string
	LocationID    string
	PartID        string
	Qty           decimal.Decimal
	UnitPrice     *decimal.Decimal // precio congelado al momento del consumo (opcional)
	Notes         string
	UsedBy        string
	UsedAt        time.Time
	LedgerEntryID string
}
