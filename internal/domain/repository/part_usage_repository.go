package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// PartUsageRepository puerto de los consumos de repuestos en órdenes de trabajo.
type PartUsageRepository interface {
	Create(ctx context.Context, usage *entity.PartUsage) error
	GetByID(ctx context.Context, id string) (*entity.PartUsage, error)
	ListByJob(ctx context.Context, branchID, jobID string) ([]*entity.PartUsage, error)
}
