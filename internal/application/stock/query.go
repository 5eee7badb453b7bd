package stock

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/taller-stock/internal/application/dto"
	"github.com/jhoicas/taller-stock/internal/domain"
	"github.com/jhoicas/taller-stock/internal/domain/entity"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
)

// QueryUseCase lecturas de saldos y del libro de movimientos.
type QueryUseCase struct {
	tx    TxRunner
	repos TxRepos
}

// NewQueryUseCase construye el caso de uso. tx se usa para lecturas que deben ver una sola instantánea.
func NewQueryUseCase(tx TxRunner, repos TxRepos) *QueryUseCase {
	return &QueryUseCase{tx: tx, repos: repos}
}

// GetStock saldos de la sucursal filtrados opcionalmente por ubicación y repuesto.
func (uc *QueryUseCase) GetStock(ctx context.Context, branchID, locationID, partID string, page dto.PageRequest) (*dto.StockListResponse, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	limit, offset := pageBounds(page.Limit, page.Offset)
	balances, total, err := uc.repos.Balances.Query(ctx, repository.StockFilter{
		BranchID: branchID, LocationID: locationID, PartID: partID, Limit: limit, Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("consultar saldos: %w", err)
	}
	out := &dto.StockListResponse{
		Items: make([]dto.StockBalanceResponse, 0, len(balances)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, b := range balances {
		out.Items = append(out.Items, toBalanceResponse(b))
	}
	return out, nil
}

// GetLedger asientos de la sucursal del más reciente al más antiguo.
func (uc *QueryUseCase) GetLedger(ctx context.Context, branchID string, q dto.LedgerQuery) (*dto.LedgerListResponse, error) {
	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	mt := entity.MovementType(q.MovementType)
	if mt != "" && !mt.IsValid() {
		return nil, fmt.Errorf("%w: movement_type %s", domain.ErrInvalidInput, q.MovementType)
	}
	limit, offset := pageBounds(q.Limit, q.Offset)
	entries, total, err := uc.repos.Ledger.List(ctx, repository.LedgerFilter{
		BranchID:     branchID,
		LocationID:   q.LocationID,
		PartID:       q.PartID,
		MovementType: mt,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("consultar libro: %w", err)
	}
	out := &dto.LedgerListResponse{
		Items: make([]dto.LedgerEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}
	for _, e := range entries {
		out.Items = append(out.Items, toLedgerResponse(e))
	}
	return out, nil
}

// Reconcile compara cada saldo de la sucursal con la suma de sus asientos.
// Una discrepancia indica escrituras fuera del motor de movimientos.
func (uc *QueryUseCase) Reconcile(ctx context.Context, branchID string) (*dto.ReconciliationResponse, error) {
	ctx, span := tracer.Start(ctx, "stock.Reconcile", trace.WithAttributes(attribute.String("branch_id", branchID)))
	defer span.End()

	if branchID == "" {
		return nil, fmt.Errorf("%w: sucursal obligatoria", domain.ErrInvalidInput)
	}
	// Libro y saldos se leen en la misma instantánea para no reportar commits a medias.
	var sums map[entity.StockKey]decimal.Decimal
	onHand := make(map[entity.StockKey]decimal.Decimal)
	err := uc.tx.RunReadOnly(ctx, func(repos TxRepos) error {
		var err error
		sums, err = repos.Ledger.SumByKey(ctx, branchID)
		if err != nil {
			return fmt.Errorf("sumar libro: %w", err)
		}
		const pageSize = 100
		for offset := 0; ; offset += pageSize {
			balances, total, err := repos.Balances.Query(ctx, repository.StockFilter{
				BranchID: branchID, Limit: pageSize, Offset: offset,
			})
			if err != nil {
				return fmt.Errorf("consultar saldos: %w", err)
			}
			for _, b := range balances {
				onHand[b.StockKey] = b.QuantityOnHand
			}
			if len(balances) == 0 || offset+len(balances) >= total {
				return nil
			}
		}
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	keys := make(map[entity.StockKey]struct{}, len(onHand)+len(sums))
	for k := range onHand {
		keys[k] = struct{}{}
	}
	for k := range sums {
		keys[k] = struct{}{}
	}
	out := &dto.ReconciliationResponse{
		BranchID:      branchID,
		KeysChecked:   len(keys),
		Discrepancies: []dto.ReconciliationLine{},
	}
	for k := range keys {
		qty, sum := onHand[k], sums[k]
		if qty.Equal(sum) {
			continue
		}
		out.Discrepancies = append(out.Discrepancies, dto.ReconciliationLine{
			LocationID:     k.LocationID,
			PartID:         k.PartID,
			QuantityOnHand: qty,
			LedgerSum:      sum,
			Difference:     qty.Sub(sum),
		})
	}
	sort.Slice(out.Discrepancies, func(i, j int) bool {
		a, b := out.Discrepancies[i], out.Discrepancies[j]
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		return a.PartID < b.PartID
	})
	out.Consistent = len(out.Discrepancies) == 0
	return out, nil
}
