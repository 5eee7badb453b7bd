package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.MasterDataRepository = (*MasterDataRepo)(nil)

// MasterDataRepo lecturas de sucursales, ubicaciones, repuestos, proveedores y órdenes de trabajo.
type MasterDataRepo struct {
	q Querier
}

// NewMasterDataRepository construye el adaptador.
func NewMasterDataRepository(q Querier) *MasterDataRepo {
	return &MasterDataRepo{q: q}
}

func (r *MasterDataRepo) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	var b entity.Branch
	err := r.q.QueryRow(ctx, `SELECT id, code, name FROM branches WHERE id = $1`, id).Scan(&b.ID, &b.Code, &b.Name)
	return found(&b, err, "branch")
}

func (r *MasterDataRepo) GetLocation(ctx context.Context, id string) (*entity.Location, error) {
	var l entity.Location
	err := r.q.QueryRow(ctx, `SELECT id, branch_id, name FROM locations WHERE id = $1`, id).Scan(&l.ID, &l.BranchID, &l.Name)
	return found(&l, err, "location")
}

func (r *MasterDataRepo) GetPart(ctx context.Context, id string) (*entity.Part, error) {
	var p entity.Part
	err := r.q.QueryRow(ctx, `SELECT id, sku, name, unit_measure FROM parts WHERE id = $1`, id).
		Scan(&p.ID, &p.SKU, &p.Name, &p.UnitMeasure)
	return found(&p, err, "part")
}

func (r *MasterDataRepo) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, `SELECT id, name FROM suppliers WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	return found(&s, err, "supplier")
}

func (r *MasterDataRepo) JobExists(ctx context.Context, branchID, jobID string) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id::text = $1 AND branch_id::text = $2)`,
		jobID, branchID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("job exists: %w", err)
	}
	return ok, nil
}

// found traduce ErrNoRows en (nil, nil).
func found[T any](v *T, err error, what string) (*T, error) {
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return v, nil
}
