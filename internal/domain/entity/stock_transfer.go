package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado de un traslado entre sucursales/ubicaciones.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusRequested TransferStatus = "REQUESTED"
	TransferStatusShipped   TransferStatus = "SHIPPED" // en tránsito: debitado en origen, no acreditado en destino
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

// StockTransfer traslado de repuestos. TransferNumber es único global.
type StockTransfer struct {
	ID             string
	TransferNumber string
	FromBranchID   string
	FromLocationID string
	ToBranchID     string
	ToLocationID   string
	Status         TransferStatus
	Notes          string
	CreatedBy      string
	RequestedAt    *time.Time
	ShippedAt      *time.Time
	ReceivedAt     *time.Time
	CancelledAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Items          []*StockTransferItem
}

// StockTransferItem línea del traslado; Qty queda fija al crearlo.
type StockTransferItem struct {
	ID         string
	TransferID string
	PartID     string
	Qty        decimal.Decimal
}

// Source clave de saldo de origen para el repuesto.
func (t *StockTransfer) Source(partID string) StockKey {
	return StockKey{BranchID: t.FromBranchID, LocationID: t.FromLocationID, PartID: partID}
}

// Destination clave de saldo de destino para el repuesto.
func (t *StockTransfer) Destination(partID string) StockKey {
	return StockKey{BranchID: t.ToBranchID, LocationID: t.ToLocationID, PartID: partID}
}

// TotalQty suma de cantidades de todas las líneas.
func (t *StockTransfer) TotalQty() decimal.Decimal {
	total := decimal.Zero
	for _, it := range t.Items {
		total = total.Add(it.Qty)
	}
	return total
}

// InvolvesBranch indica si la sucursal es origen o destino del traslado.
func (t *StockTransfer) InvolvesBranch(branchID string) bool {
	return t.FromBranchID == branchID || t.ToBranchID == branchID
}
