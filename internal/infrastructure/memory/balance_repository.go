package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo saldos por (sucursal, ubicación, repuesto).
type BalanceRepo struct {
	v view
}

// ApplyMovement suma delta verificando que el saldo no quede negativo.
func (r *BalanceRepo) ApplyMovement(ctx context.Context, key entity.StockKey, delta decimal.Decimal) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.v.write(func(d *data) error {
		b, ok := d.balances[key]
		current := decimal.Zero
		if ok {
			current = b.QuantityOnHand
		}
		next := current.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficientStock
		}
		if !ok {
			b = &entity.StockBalance{StockKey: key}
			d.balances[key] = b
		}
		b.QuantityOnHand = next
		b.UpdatedAt = time.Now()
		qty = next
		return nil
	})
	return qty, err
}

// Get devuelve el saldo; cero si la clave no tiene fila.
func (r *BalanceRepo) Get(ctx context.Context, key entity.StockKey) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	r.v.read(func(d *data) {
		if b, ok := d.balances[key]; ok {
			out = shallow(b)
		}
	})
	if out == nil {
		out = &entity.StockBalance{StockKey: key, QuantityOnHand: decimal.Zero}
	}
	return out, nil
}

// Query lista saldos ordenados por ubicación y repuesto.
func (r *BalanceRepo) Query(ctx context.Context, filter repository.StockFilter) ([]*entity.StockBalance, int, error) {
	var list []*entity.StockBalance
	r.v.read(func(d *data) {
		for k, b := range d.balances {
			if k.BranchID != filter.BranchID ||
				(filter.LocationID != "" && k.LocationID != filter.LocationID) ||
				(filter.PartID != "" && k.PartID != filter.PartID) {
				continue
			}
			list = append(list, shallow(b))
		}
	})
	sort.Slice(list, func(i, j int) bool {
		if list[i].LocationID != list[j].LocationID {
			return list[i].LocationID < list[j].LocationID
		}
		return list[i].PartID < list[j].PartID
	})
	return page(list, filter.Limit, filter.Offset), len(list), nil
}
