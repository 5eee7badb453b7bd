package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var (
	_ repository.AdjustmentRepository  = (*AdjustmentRepo)(nil)
	_ repository.PartUsageRepository   = (*PartUsageRepo)(nil)
	_ repository.SequenceRepository    = (*SequenceRepo)(nil)
	_ repository.IdempotencyRepository = (*IdempotencyRepo)(nil)
)

// AdjustmentRepo ajustes de stock.
type AdjustmentRepo struct {
	v view
}

func (r *AdjustmentRepo) Create(ctx context.Context, adj *entity.StockAdjustment) error {
	stored := shallow(adj)
	return r.v.write(func(d *data) error {
		if _, ok := d.adjustments[adj.ID]; ok {
			return fmt.Errorf("%w: ajuste %s", domain.ErrDuplicate, adj.ID)
		}
		d.adjustments[adj.ID] = stored
		return nil
	})
}

func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.StockAdjustment, error) {
	var out *entity.StockAdjustment
	r.v.read(func(d *data) {
		if a, ok := d.adjustments[id]; ok {
			out = shallow(a)
		}
	})
	return out, nil
}

// PartUsageRepo consumos de repuestos por orden de trabajo.
type PartUsageRepo struct {
	v view
}

func (r *PartUsageRepo) Create(ctx context.Context, u *entity.PartUsage) error {
	stored := shallow(u)
	return r.v.write(func(d *data) error {
		if _, ok := d.usages[u.ID]; ok {
			return fmt.Errorf("%w: consumo %s", domain.ErrDuplicate, u.ID)
		}
		d.usages[u.ID] = stored
		d.usageOrder = append(d.usageOrder, u.ID)
		return nil
	})
}

func (r *PartUsageRepo) GetByID(ctx context.Context, id string) (*entity.PartUsage, error) {
	var out *entity.PartUsage
	r.v.read(func(d *data) {
		if u, ok := d.usages[id]; ok {
			out = shallow(u)
		}
	})
	return out, nil
}

// ListByJob consumos de la orden de trabajo en orden de registro.
func (r *PartUsageRepo) ListByJob(ctx context.Context, branchID, jobID string) ([]*entity.PartUsage, error) {
	list := []*entity.PartUsage{}
	r.v.read(func(d *data) {
		for _, id := range d.usageOrder {
			u := d.usages[id]
			if u.BranchID == branchID && u.JobID == jobID {
				list = append(list, shallow(u))
			}
		}
	})
	return list, nil
}

// SequenceRepo consecutivos por alcance.
type SequenceRepo struct {
	v view
}

func (r *SequenceRepo) Next(ctx context.Context, scope string) (int64, error) {
	var n int64
	err := r.v.write(func(d *data) error {
		d.sequences[scope]++
		n = d.sequences[scope]
		return nil
	})
	return n, err
}

// IdempotencyRepo claves de idempotencia por sucursal.
type IdempotencyRepo struct {
	v view
}

// Reserve guarda la clave o devuelve el registro existente.
func (r *IdempotencyRepo) Reserve(ctx context.Context, rec *entity.IdempotencyRecord) (*entity.IdempotencyRecord, error) {
	var prev *entity.IdempotencyRecord
	err := r.v.write(func(d *data) error {
		k := idemKey{branchID: rec.BranchID, key: rec.Key}
		if existing, ok := d.idempotency[k]; ok {
			prev = shallow(existing)
			return nil
		}
		d.idempotency[k] = shallow(rec)
		return nil
	})
	return prev, err
}
