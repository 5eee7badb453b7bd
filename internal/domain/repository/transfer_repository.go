package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// Direcciones para listar traslados desde el punto de vista de una sucursal.
const (
	TransferDirectionOutgoing = "outgoing"
	TransferDirectionIncoming = "incoming"
)

// TransferFilter filtros del listado de traslados.
type TransferFilter struct {
	BranchID  string
	Direction string                // outgoing, incoming o vacío (ambos)
	Status    entity.TransferStatus // vacío = todos
	Limit     int
	Offset    int
}

// TransferRepository puerto de persistencia de traslados.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	// Update guarda estado y fechas; las líneas son inmutables.
	Update(ctx context.Context, t *entity.StockTransfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, int, error)
}
