package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica la causa de un asiento del libro de movimientos.
type MovementType string

const (
	MovementAdjustmentPlus  MovementType = "ADJUSTMENT_PLUS"
	MovementAdjustmentMinus MovementType = "ADJUSTMENT_MINUS"
	MovementPurchase        MovementType = "PURCHASE"
	MovementConsumption     MovementType = "CONSUMPTION"
	MovementTransferOut     MovementType = "TRANSFER_OUT"
	MovementTransferIn      MovementType = "TRANSFER_IN"
)

// IsValid indica si el tipo pertenece al conjunto cerrado de movimientos.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementAdjustmentPlus, MovementAdjustmentMinus, MovementPurchase,
		MovementConsumption, MovementTransferOut, MovementTransferIn:
		return true
	}
	return false
}

// IsIncrease indica si el movimiento suma al saldo.
func (t MovementType) IsIncrease() bool {
	switch t {
	case MovementAdjustmentPlus, MovementPurchase, MovementTransferIn:
		return true
	}
	return false
}

// MovementTypeForAdjustment deriva el tipo de ajuste a partir del signo del delta.
func MovementTypeForAdjustment(delta decimal.Decimal) MovementType {
	if delta.IsNegative() {
		return MovementAdjustmentMinus
	}
	return MovementAdjustmentPlus
}

// ReferenceType entidad de flujo que originó el asiento.
type ReferenceType string

const (
	ReferenceAdjustment    ReferenceType = "ADJUSTMENT"
	ReferencePurchaseOrder ReferenceType = "PURCHASE_ORDER"
	ReferenceTransfer      ReferenceType = "TRANSFER"
	ReferenceJob           ReferenceType = "JOB"
)

// LedgerEntry asiento inmutable del libro de movimientos.
// La suma de QuantityDelta por StockKey es igual al QuantityOnHand del saldo.
type LedgerEntry struct {
	ID string
	StockKey
	MovementType  MovementType
	ReferenceType ReferenceType
	ReferenceID   string
	QuantityDelta decimal.Decimal  // positivo entrada, negativo salida
	UnitCost      *decimal.Decimal // solo en compras
	Notes         string
	PerformedBy   string // UserID
	PerformedAt   time.Time
}
