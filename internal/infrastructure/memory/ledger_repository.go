package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos; solo admite inserciones.
type LedgerRepo struct {
	v view
}

// Append agrega el asiento al final del libro.
func (r *LedgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	stored := shallow(entry)
	return r.v.write(func(d *data) error {
		d.ledger = append(d.ledger, stored)
		return nil
	})
}

// List asientos del más reciente al más antiguo; a igual fecha, el último insertado primero.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var list []*entity.LedgerEntry
	r.v.read(func(d *data) {
		for i := len(d.ledger) - 1; i >= 0; i-- {
			e := d.ledger[i]
			if matchesLedger(e, f) {
				list = append(list, shallow(e))
			}
		}
	})
	sort.SliceStable(list, func(i, j int) bool { return list[i].PerformedAt.After(list[j].PerformedAt) })
	return page(list, f.Limit, f.Offset), len(list), nil
}

func matchesLedger(e *entity.LedgerEntry, f repository.LedgerFilter) bool {
	switch {
	case e.BranchID != f.BranchID:
		return false
	case f.LocationID != "" && e.LocationID != f.LocationID:
		return false
	case f.PartID != "" && e.PartID != f.PartID:
		return false
	case f.MovementType != "" && e.MovementType != f.MovementType:
		return false
	case f.ReferenceType != "" && e.ReferenceType != f.ReferenceType:
		return false
	case f.ReferenceID != "" && e.ReferenceID != f.ReferenceID:
		return false
	case f.From != nil && e.PerformedAt.Before(*f.From):
		return false
	case f.To != nil && e.PerformedAt.After(*f.To):
		return false
	}
	return true
}

// SumByKey suma de deltas por clave de la sucursal.
func (r *LedgerRepo) SumByKey(ctx context.Context, branchID string) (map[entity.StockKey]decimal.Decimal, error) {
	sums := map[entity.StockKey]decimal.Decimal{}
	r.v.read(func(d *data) {
		for _, e := range d.ledger {
			if e.BranchID == branchID {
				sums[e.StockKey] = sums[e.StockKey].Add(e.QuantityDelta)
			}
		}
	})
	return sums, nil
}
