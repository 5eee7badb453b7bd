package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockFilter filtros de lectura de saldos. BranchID es obligatorio.
type StockFilter struct {
	BranchID   string
	LocationID string // opcional
	PartID     string // opcional
	Limit      int
	Offset     int
}

// StockBalanceRepository puerto del almacén de saldos por (sucursal, ubicación, repuesto).
// ApplyMovement es el único punto por el que cambia QuantityOnHand.
type StockBalanceRepository interface {
	// ApplyMovement suma delta al saldo en una sola lectura-modificación-escritura atómica,
	// creando la fila si no existe. Devuelve domain.ErrInsufficientStock si el resultado
	// quedaría negativo; en ese caso no modifica nada.
	ApplyMovement(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error)
	// Get devuelve el saldo; si la clave nunca tuvo movimientos devuelve cantidad cero.
	Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error)
	// Query lista saldos paginados y el total de filas que cumplen el filtro.
	Query(ctx context.Context, filter StockFilter) ([]*entity.StockBalance, int, error)
}
