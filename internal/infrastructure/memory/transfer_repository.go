package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados con sus líneas.
type TransferRepo struct {
	v view
}

// Create guarda el traslado; el número es único global.
func (r *TransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	stored := copyTransfer(t)
	return r.v.write(func(d *data) error {
		if _, ok := d.transfers[t.ID]; ok {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.ID)
		}
		for _, o := range d.transfers {
			if o.TransferNumber == t.TransferNumber {
				return fmt.Errorf("%w: número de traslado %s", domain.ErrDuplicate, t.TransferNumber)
			}
		}
		d.transfers[t.ID] = stored
		return nil
	})
}

// GetByID devuelve una copia del traslado o nil.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	r.v.read(func(d *data) {
		if t, ok := d.transfers[id]; ok {
			out = copyTransfer(t)
		}
	})
	return out, nil
}

// GetForUpdate igual que GetByID: las transacciones en memoria ya están serializadas.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

// Update guarda estado y fechas; las líneas no cambian.
func (r *TransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	return r.v.write(func(d *data) error {
		cur, ok := d.transfers[t.ID]
		if !ok {
			return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
		}
		next := copyTransfer(t)
		next.Items = cur.Items
		d.transfers[t.ID] = next
		return nil
	})
}

// List traslados de la sucursal según dirección y estado, del más reciente al más antiguo.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, int, error) {
	var list []*entity.StockTransfer
	r.v.read(func(d *data) {
		for _, t := range d.transfers {
			if f.Status != "" && t.Status != f.Status {
				continue
			}
			var ok bool
			switch f.Direction {
			case repository.TransferDirectionOutgoing:
				ok = t.FromBranchID == f.BranchID
			case repository.TransferDirectionIncoming:
				ok = t.ToBranchID == f.BranchID
			default:
				ok = t.InvolvesBranch(f.BranchID)
			}
			if ok {
				list = append(list, copyTransfer(t))
			}
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].TransferNumber > list[j].TransferNumber
	})
	return page(list, f.Limit, f.Offset), len(list), nil
}
