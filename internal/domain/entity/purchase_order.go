package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de una orden de compra a proveedor.
type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "DRAFT"
	POStatusOrdered           PurchaseOrderStatus = "ORDERED"
	POStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	POStatusReceived          PurchaseOrderStatus = "RECEIVED"
	POStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

// PurchaseOrder cabecera de una orden de compra. OrderNumber es único por sucursal.
type PurchaseOrder struct {
	ID                   string
	BranchID             string
	SupplierID           string
	OrderNumber          string
	Status               PurchaseOrderStatus
	Notes                string
	CreatedBy            string
	OrderedAt            *time.Time
	ReceivedAt           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Items                []*PurchaseOrderItem
	LinkedPartRequestIDs []string
}

// PurchaseOrderItem línea de la orden. ReceivedQty solo crece y nunca supera OrderedQty.
type PurchaseOrderItem struct {
	ID              string
	PurchaseOrderID string
	PartID          string
	OrderedQty      decimal.Decimal
	UnitCost        decimal.Decimal
	ReceivedQty     decimal.Decimal
	AvgReceivedCost decimal.Decimal // costo promedio ponderado de lo recibido
}

// Item devuelve la línea del repuesto o nil si no está en la orden.
func (po *PurchaseOrder) Item(partID string) *PurchaseOrderItem {
	for _, it := range po.Items {
		if it.PartID == partID {
			return it
		}
	}
	return nil
}

// FullyReceived indica si todas las líneas alcanzaron la cantidad ordenada.
func (po *PurchaseOrder) FullyReceived() bool {
	for _, it := range po.Items {
		if it.ReceivedQty.LessThan(it.OrderedQty) {
			return false
		}
	}
	return true
}

// Outstanding cantidad pendiente por recibir de la línea.
func (it *PurchaseOrderItem) Outstanding() decimal.Decimal {
	return it.OrderedQty.Sub(it.ReceivedQty)
}
