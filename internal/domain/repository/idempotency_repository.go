package repository

import (
	"context"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

// IdempotencyRepository registro de claves de idempotencia enviadas por los clientes.
type IdempotencyRepository interface {
	// Reserve guarda la clave. Si ya existía devuelve el registro original y no guarda nada.
	Reserve(ctx context.Context, rec *entity.IdempotencyRecord) (*entity.IdempotencyRecord, error)
}
