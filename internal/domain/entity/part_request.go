package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de repuesto hecha por un técnico.
type PartRequestStatus string

const (
	PartRequestPending   PartRequestStatus = "PENDING"
	PartRequestOrdered   PartRequestStatus = "ORDERED"
	PartRequestArrived   PartRequestStatus = "ARRIVED"
	PartRequestIssued    PartRequestStatus = "ISSUED"
	PartRequestCancelled PartRequestStatus = "CANCELLED"
)

// PartRequest solicitud de repuesto de otro módulo (órdenes de trabajo).
// Las órdenes de compra solo avanzan su estado a ORDERED y ARRIVED.
type PartRequest struct {
	ID              string
	BranchID        string
	JobID           string
	PartID          string
	Qty             decimal.Decimal
	Status          PartRequestStatus
	PurchaseOrderID string
	SupplierID      string
	UpdatedAt       time.Time
}
