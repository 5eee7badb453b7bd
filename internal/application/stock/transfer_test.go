package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain"
)

func newTransfer(t *testing.T, f *fixture, items ...dto.TransferItemRequest) *dto.TransferResponse {
	t.Helper()
	tr, err := f.transfers.Create(context.Background(), user, branchA, dto.CreateTransferRequest{
		FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locB1, Items: items,
	})
	require.NoError(t, err)
	return tr
}

func item(part, amount string) dto.TransferItemRequest {
	return dto.TransferItemRequest{PartID: part, Qty: qty(amount)}
}

func TestTransfer_ConservaCantidades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "10")
	f.seed(t, branchA, locA1, partPad, "4")

	tr := newTransfer(t, f, item(partPad, "1"), item(partOil, "6"))
	assert.Equal(t, "DRAFT", tr.Status)
	assert.Equal(t, "TRF-000001", tr.TransferNumber)

	_, err := f.transfers.Request(ctx, user, branchA, tr.ID)
	require.NoError(t, err)
	shipped, err := f.transfers.Ship(ctx, user, branchA, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "SHIPPED", shipped.Status)
	require.NotNil(t, shipped.ShippedAt)

	// En tránsito: debitado en origen, no acreditado en destino
	assert.True(t, qty("4").Equal(f.onHand(t, branchA, locA1, partOil)))
	assert.True(t, f.onHand(t, branchB, locB1, partOil).IsZero())

	transit, err := f.transfers.InTransit(ctx, branchB)
	require.NoError(t, err)
	require.Len(t, transit, 2)

	received, err := f.transfers.Receive(ctx, user, branchB, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "RECEIVED", received.Status)

	assert.True(t, qty("6").Equal(f.onHand(t, branchB, locB1, partOil)))
	assert.True(t, qty("1").Equal(f.onHand(t, branchB, locB1, partPad)))
	assert.True(t, qty("3").Equal(f.onHand(t, branchA, locA1, partPad)))

	out := f.ledger(t, branchA, dto.LedgerQuery{MovementType: "TRANSFER_OUT"})
	in := f.ledger(t, branchB, dto.LedgerQuery{MovementType: "TRANSFER_IN"})
	require.Len(t, out, 2)
	require.Len(t, in, 2)
	for _, e := range append(out, in...) {
		assert.Equal(t, "TRANSFER", e.ReferenceType)
		assert.Equal(t, tr.ID, e.ReferenceID)
	}

	transit, err = f.transfers.InTransit(ctx, branchB)
	require.NoError(t, err)
	assert.Empty(t, transit)

	f.requireConsistent(t, branchA)
	f.requireConsistent(t, branchB)
	assert.Equal(t, []string{"stock.adjusted", "stock.adjusted", "transfer.created", "transfer.request", "transfer.ship", "transfer.receive"}, f.audit.actions())
}

func TestTransfer_DespachoSinSaldoEsAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "10")
	f.seed(t, branchA, locA1, partPad, "1")

	// partOil se procesa primero y alcanza; partPad no
	tr := newTransfer(t, f, item(partOil, "5"), item(partPad, "2"))
	_, err := f.transfers.Request(ctx, user, branchA, tr.ID)
	require.NoError(t, err)

	_, err = f.transfers.Ship(ctx, user, branchA, tr.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, qty("10").Equal(f.onHand(t, branchA, locA1, partOil)))
	assert.True(t, qty("1").Equal(f.onHand(t, branchA, locA1, partPad)))
	assert.Empty(t, f.ledger(t, branchA, dto.LedgerQuery{MovementType: "TRANSFER_OUT"}))

	got, err := f.transfers.Get(ctx, branchA, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "REQUESTED", got.Status)
}

func TestTransfer_ReglasDeSucursalYEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "3")
	tr := newTransfer(t, f, item(partOil, "1"))

	_, err := f.transfers.Ship(ctx, user, branchA, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "no se despacha en DRAFT")

	_, err = f.transfers.Request(ctx, user, branchB, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo el origen solicita")

	_, err = f.transfers.Request(ctx, user, "branch-z", tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.transfers.Get(ctx, "branch-z", tr.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.transfers.Request(ctx, user, branchA, tr.ID)
	require.NoError(t, err)
	_, err = f.transfers.Ship(ctx, user, branchA, tr.ID)
	require.NoError(t, err)

	_, err = f.transfers.Cancel(ctx, user, branchA, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un traslado despachado no se anula")
	_, err = f.transfers.Receive(ctx, user, branchA, tr.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo el destino recibe")

	_, err = f.transfers.Receive(ctx, user, branchB, tr.ID)
	require.NoError(t, err)
	_, err = f.transfers.Receive(ctx, user, branchB, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, qty("1").Equal(f.onHand(t, branchB, locB1, partOil)))
}

func TestTransfer_Cancelar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := newTransfer(t, f, item(partOil, "1"))

	got, err := f.transfers.Cancel(ctx, user, branchA, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
	assert.NotNil(t, got.CancelledAt)

	_, err = f.transfers.Request(ctx, user, branchA, tr.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransfer_CreateValidaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   dto.CreateTransferRequest
		want error
	}{
		{"misma ubicación", dto.CreateTransferRequest{FromLocationID: locA1, ToBranchID: branchA, ToLocationID: locA1, Items: []dto.TransferItemRequest{item(partOil, "1")}}, domain.ErrInvalidInput},
		{"sin líneas", dto.CreateTransferRequest{FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locB1}, domain.ErrInvalidInput},
		{"cantidad negativa", dto.CreateTransferRequest{FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locB1, Items: []dto.TransferItemRequest{item(partOil, "-1")}}, domain.ErrInvalidInput},
		{"repuesto repetido", dto.CreateTransferRequest{FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locB1, Items: []dto.TransferItemRequest{item(partOil, "1"), item(partOil, "1")}}, domain.ErrInvalidInput},
		{"origen de otra sucursal", dto.CreateTransferRequest{FromLocationID: locB1, ToBranchID: branchA, ToLocationID: locA2, Items: []dto.TransferItemRequest{item(partOil, "1")}}, domain.ErrNotFound},
		{"destino fuera de la sucursal destino", dto.CreateTransferRequest{FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locA2, Items: []dto.TransferItemRequest{item(partOil, "1")}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transfers.Create(ctx, user, branchA, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// Entre ubicaciones de la misma sucursal es válido
	tr, err := f.transfers.Create(ctx, user, branchA, dto.CreateTransferRequest{
		FromLocationID: locA1, ToBranchID: branchA, ToLocationID: locA2, Items: []dto.TransferItemRequest{item(partOil, "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, branchA, tr.ToBranchID)
}

func TestTransfer_ListarPorDireccion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	newTransfer(t, f, item(partOil, "1"))
	newTransfer(t, f, item(partPad, "1"))

	out, err := f.transfers.List(ctx, branchA, "outgoing", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Page.Total)

	in, err := f.transfers.List(ctx, branchB, "incoming", "DRAFT", dto.PageRequest{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, in.Page.Total)
	assert.Len(t, in.Items, 1)

	none, err := f.transfers.List(ctx, branchA, "incoming", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, none.Page.Total)

	_, err = f.transfers.List(ctx, branchA, "sideways", "", dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransfer_IdempotenciaYManifiestoSinGenerador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := dto.CreateTransferRequest{
		FromLocationID: locA1, ToBranchID: branchB, ToLocationID: locB1,
		Items: []dto.TransferItemRequest{item(partOil, "1")}, IdempotencyKey: "trf-1",
	}
	first, err := f.transfers.Create(ctx, user, branchA, in)
	require.NoError(t, err)
	second, err := f.transfers.Create(ctx, user, branchA, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TransferNumber, second.TransferNumber)

	_, _, err = f.transfers.Manifest(ctx, branchA, first.ID)
	assert.ErrorIs(t, err, stock.ErrNoDocumentGenerator)
}
