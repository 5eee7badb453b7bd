package stock_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/infrastructure/memory"
)

const (
	user     = "user-1"
	branchA  = "branch-a"
	branchB  = "branch-b"
	locA1    = "loc-a1"
	locA2    = "loc-a2"
	locB1    = "loc-b1"
	partOil  = "part-oil"
	partPad  = "part-pad"
	supplier = "sup-1"
	jobA     = "job-a"
)

// recorder guarda los eventos de auditoría publicados.
type recorder struct {
	mu     sync.Mutex
	events []stock.AuditEvent
}

func (r *recorder) Record(_ context.Context, e stock.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

type fixture struct {
	store     *memory.Store
	audit     *recorder
	adjust    *stock.AdjustmentUseCase
	orders    *stock.PurchaseOrderUseCase
	transfers *stock.TransferUseCase
	consume   *stock.ConsumptionUseCase
	query     *stock.QueryUseCase
}

// newFixture dos sucursales, tres ubicaciones, dos repuestos, un proveedor y una orden de trabajo.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddBranch(entity.Branch{ID: branchA, Code: "A", Name: "Centro"})
	s.AddBranch(entity.Branch{ID: branchB, Code: "B", Name: "Norte"})
	s.AddLocation(entity.Location{ID: locA1, BranchID: branchA, Name: "Estante 1"})
	s.AddLocation(entity.Location{ID: locA2, BranchID: branchA, Name: "Estante 2"})
	s.AddLocation(entity.Location{ID: locB1, BranchID: branchB, Name: "Bodega"})
	s.AddPart(entity.Part{ID: partOil, SKU: "OIL-5W30", Name: "Aceite 5W30", UnitMeasure: "L"})
	s.AddPart(entity.Part{ID: partPad, SKU: "PAD-F", Name: "Pastillas delanteras", UnitMeasure: "JGO"})
	s.AddSupplier(entity.Supplier{ID: supplier, Name: "Distribuidora"})
	s.AddJob(branchA, jobA)

	rec := &recorder{}
	repos, master := s.Repos(), s.MasterData()
	return &fixture{
		store:     s,
		audit:     rec,
		adjust:    stock.NewAdjustmentUseCase(s, repos, master, rec),
		orders:    stock.NewPurchaseOrderUseCase(s, repos, master, rec),
		transfers: stock.NewTransferUseCase(s, repos, master, rec, nil),
		consume:   stock.NewConsumptionUseCase(s, repos, master, rec),
		query:     stock.NewQueryUseCase(s, repos),
	}
}

func qty(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// seed deja qty unidades del repuesto en la ubicación vía ajuste.
func (f *fixture) seed(t *testing.T, branchID, locationID, partID, amount string) {
	t.Helper()
	_, err := f.adjust.Adjust(context.Background(), user, branchID, dto.AdjustStockRequest{
		LocationID: locationID, PartID: partID, QuantityDelta: qty(amount), Reason: "inventario inicial",
	})
	require.NoError(t, err)
}

func (f *fixture) onHand(t *testing.T, branchID, locationID, partID string) decimal.Decimal {
	t.Helper()
	b, err := f.store.Repos().Balances.Get(context.Background(), entity.StockKey{BranchID: branchID, LocationID: locationID, PartID: partID})
	require.NoError(t, err)
	if b == nil {
		return decimal.Zero
	}
	return b.QuantityOnHand
}

func (f *fixture) ledger(t *testing.T, branchID string, q dto.LedgerQuery) []dto.LedgerEntryResponse {
	t.Helper()
	q.Limit = 100
	out, err := f.query.GetLedger(context.Background(), branchID, q)
	require.NoError(t, err)
	return out.Items
}

// requireConsistent el saldo de cada clave coincide con la suma de su libro.
func (f *fixture) requireConsistent(t *testing.T, branchID string) {
	t.Helper()
	rec, err := f.query.Reconcile(context.Background(), branchID)
	require.NoError(t, err)
	require.True(t, rec.Consistent, "discrepancias: %+v", rec.Discrepancies)
}
