package repository

import "context"

// SequenceRepository consecutivos para numerar documentos (órdenes por sucursal, traslados global).
type SequenceRepository interface {
	Next(ctx context.Context, scope string) (int64, error)
}
