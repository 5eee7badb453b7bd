package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// MasterDataRepository consultas de solo lectura sobre datos maestros de otros módulos.
// Los Get* devuelven (nil, nil) si el registro no existe.
type MasterDataRepository interface {
	GetBranch(ctx context.Context, id string) (*entity.Branch, error)
	GetLocation(ctx context.Context, id string) (*entity.Location, error)
	GetPart(ctx context.Context, id string) (*entity.Part, error)
	GetSupplier(ctx context.Context, id string) (*entity.Supplier, error)
	// JobExists indica si la orden de trabajo existe en la sucursal.
	JobExists(ctx context.Context, branchID, jobID string) (bool, error)
}
