package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica un saldo: repuesto en una ubicación de una sucursal.
type StockKey struct {
	BranchID   string
	LocationID string
	PartID     string
}

// StockBalance cantidad disponible de un repuesto en una ubicación de una sucursal.
// Se crea en el primer movimiento hacia la clave y nunca se elimina; QuantityOnHand >= 0.
type StockBalance struct {
	StockKey
	QuantityOnHand decimal.Decimal
	UpdatedAt      time.Time
}
