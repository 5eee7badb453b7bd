package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
)

func TestGetStock_FiltrosYPaginacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "1")
	f.seed(t, branchA, locA1, partPad, "2")
	f.seed(t, branchA, locA2, partOil, "3")
	f.seed(t, branchB, locB1, partOil, "9")

	all, err := f.query.GetStock(ctx, branchA, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)

	byPart, err := f.query.GetStock(ctx, branchA, "", partOil, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, byPart.Page.Total)

	byLoc, err := f.query.GetStock(ctx, branchA, locA1, "", dto.PageRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, byLoc.Page.Total)
	assert.Len(t, byLoc.Items, 1)

	capped, err := f.query.GetStock(ctx, branchA, "", "", dto.PageRequest{Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 100, capped.Page.Limit)
}

func TestGetLedger_TipoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.query.GetLedger(context.Background(), branchA, dto.LedgerQuery{MovementType: "GIFT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetLedger_AisladoPorSucursal(t *testing.T) {
	f := newFixture(t)
	f.seed(t, branchA, locA1, partOil, "1")
	f.seed(t, branchB, locB1, partOil, "1")

	entries := f.ledger(t, branchB, dto.LedgerQuery{})
	require.Len(t, entries, 1)
	assert.Equal(t, branchB, entries[0].BranchID)
}

func TestReconcile_DetectaEscriturasFueraDelLibro(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "5")
	f.requireConsistent(t, branchA)

	// Escritura directa al saldo sin asiento
	_, err := f.store.Repos().Balances.ApplyMovement(ctx, entity.StockKey{BranchID: branchA, LocationID: locA2, PartID: partPad}, qty("2"))
	require.NoError(t, err)

	rec, err := f.query.Reconcile(ctx, branchA)
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, 2, rec.KeysChecked)
	require.Len(t, rec.Discrepancies, 1)
	d := rec.Discrepancies[0]
	assert.Equal(t, locA2, d.LocationID)
	assert.True(t, qty("2").Equal(d.Difference))
	assert.True(t, d.LedgerSum.IsZero())
}

func TestReconcile_ConsistenteConEscriturasConcurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := f.adjust.Adjust(ctx, user, branchA, dto.AdjustStockRequest{
				LocationID: locA1, PartID: partOil, QuantityDelta: qty("1"), Reason: "conteo",
			})
			assert.NoError(t, err)
		}
	}()

	for i := 0; i < 50; i++ {
		rec, err := f.query.Reconcile(ctx, branchA)
		require.NoError(t, err)
		assert.True(t, rec.Consistent, "discrepancias: %+v", rec.Discrepancies)
	}
	wg.Wait()
	f.requireConsistent(t, branchA)
}
