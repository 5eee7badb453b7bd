package repository

import (
	"context"
	"time"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerFilter filtros de consulta del libro. BranchID es obligatorio.
type LedgerFilter struct {
	BranchID      string
	LocationID    string
	PartID        string
	MovementType  entity.MovementType
	ReferenceType entity.ReferenceType
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// LedgerRepository puerto del libro de movimientos (solo inserción).
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// List devuelve asientos del más reciente al más antiguo y el total que cumple el filtro.
	List(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, int, error)
	// SumByKey suma QuantityDelta por clave de saldo de la sucursal (conciliación).
	SumByKey(ctx context.Context, branchID string) (map[entity.StockKey]decimal.Decimal, error)
}
