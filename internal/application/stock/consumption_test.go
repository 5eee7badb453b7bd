package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
)

func TestConsume_DescargaYRegistraUso(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partPad, "4")

	price := qty("85000")
	usage, err := f.consume.Consume(ctx, user, branchA, jobA, dto.ConsumePartRequest{
		LocationID: locA1, PartID: partPad, Qty: qty("1"), UnitPrice: &price, Notes: "cambio de pastillas",
	})
	require.NoError(t, err)
	assert.Equal(t, jobA, usage.JobID)
	assert.NotEmpty(t, usage.LedgerEntryID)
	assert.True(t, qty("3").Equal(f.onHand(t, branchA, locA1, partPad)))

	entries := f.ledger(t, branchA, dto.LedgerQuery{MovementType: "CONSUMPTION"})
	require.Len(t, entries, 1)
	assert.Equal(t, "JOB", entries[0].ReferenceType)
	assert.Equal(t, jobA, entries[0].ReferenceID)
	assert.True(t, qty("-1").Equal(entries[0].QuantityDelta))

	list, err := f.consume.ListByJob(ctx, branchA, jobA)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, usage.ID, list[0].ID)
	require.NotNil(t, list[0].UnitPrice)
	assert.True(t, price.Equal(*list[0].UnitPrice))

	f.requireConsistent(t, branchA)
	assert.Contains(t, f.audit.actions(), "job.part_consumed")
}

func TestConsume_Errores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partPad, "1")

	_, err := f.consume.Consume(ctx, user, branchA, jobA, dto.ConsumePartRequest{LocationID: locA1, PartID: partPad, Qty: qty("2")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.consume.Consume(ctx, user, branchA, "job-x", dto.ConsumePartRequest{LocationID: locA1, PartID: partPad, Qty: qty("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// La orden de trabajo es de la sucursal A
	_, err = f.consume.Consume(ctx, user, branchB, jobA, dto.ConsumePartRequest{LocationID: locB1, PartID: partPad, Qty: qty("1")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.consume.Consume(ctx, user, branchA, jobA, dto.ConsumePartRequest{LocationID: locA1, PartID: partPad, Qty: qty("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, qty("1").Equal(f.onHand(t, branchA, locA1, partPad)))
	assert.Empty(t, f.ledger(t, branchA, dto.LedgerQuery{MovementType: "CONSUMPTION"}))
	list, err := f.consume.ListByJob(ctx, branchA, jobA)
	require.NoError(t, err)
	assert.Empty(t, list)
	f.requireConsistent(t, branchA)
}

func TestConsume_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, branchA, locA1, partOil, "5")
	in := dto.ConsumePartRequest{LocationID: locA1, PartID: partOil, Qty: qty("2"), IdempotencyKey: "consume-1"}

	first, err := f.consume.Consume(ctx, user, branchA, jobA, in)
	require.NoError(t, err)
	second, err := f.consume.Consume(ctx, user, branchA, jobA, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, qty("3").Equal(f.onHand(t, branchA, locA1, partOil)))
}
