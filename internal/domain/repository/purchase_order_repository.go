package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de órdenes de compra.
type PurchaseOrderFilter struct {
	BranchID string
	Status   entity.PurchaseOrderStatus // vacío = todos
	Limit    int
	Offset   int
}

// PurchaseOrderRepository puerto de persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	// Create persiste cabecera, líneas y vínculos a solicitudes de repuesto.
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetForUpdate como GetByID pero bloquea la cabecera hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// Update guarda estado, fechas y cantidades recibidas de las líneas.
	Update(ctx context.Context, po *entity.PurchaseOrder) error
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error)
}
