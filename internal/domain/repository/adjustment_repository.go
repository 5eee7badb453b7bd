package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// AdjustmentRepository puerto de persistencia de ajustes de stock.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error)
}
