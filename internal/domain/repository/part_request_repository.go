package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// PartRequestRepository registro externo de solicitudes de repuesto.
// Las órdenes de compra lo leen y avanzan su estado dentro de su propia transacción.
type PartRequestRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PartRequest, error)
	Update(ctx context.Context, req *entity.PartRequest) error
}
